// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/storage"
)

// publicKeySegment is the key segment under which an account stores the
// public key that signs on its behalf
const publicKeySegment = "public_key"

var (
	ErrInvalidPublicKey = errors.New("invalid public key")

	keyFactory secp256k1.Factory
)

// PublicKeyKey returns the key of the public key of [addr]
func PublicKeyKey(addr address.Address) storage.Key {
	return storage.Join(addr.String(), publicKeySegment)
}

// SignedBy returns true if one of the signatures of the tx was made by the
// public key [addr] held before the tx. An account without a public key
// never signs. Reading the key is charged to the predicate.
func (c *Ctx) SignedBy(addr address.Address) (bool, error) {
	pkBytes, err := c.ReadPre(PublicKeyKey(addr))
	if err != nil {
		return false, err
	}
	if len(pkBytes) == 0 {
		return false, nil
	}
	pk, err := keyFactory.ToPublicKey(pkBytes)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %s", ErrInvalidPublicKey, addr, err)
	}

	msg := c.tx.UnsignedBytes()
	for _, sig := range c.tx.Signatures {
		if pk.Verify(msg, sig) {
			return true, nil
		}
	}
	return false, nil
}
