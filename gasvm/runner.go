// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"

	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/token"
	"github.com/ava-labs/gasvm/vp"
)

// TxRunner executes the code of a transaction. Every effect of the tx must
// go through [env], which charges the tx gas meter.
type TxRunner interface {
	Run(ctx context.Context, tx *vp.Tx, env *TxEnv) error
}

// VpRunner executes the validity predicate [code] of a user account.
// [code] is nil if the account has no predicate in storage. Reads must go
// through [ctx] so they are charged to the predicate's meter.
type VpRunner interface {
	Run(ctx *vp.Ctx, code []byte) (bool, error)
}

// CodeValidator is implemented by runners that check code before its first
// run. Validated code is cached by hash.
type CodeValidator interface {
	ValidateCode(code []byte) error
}

// SigVerifier checks the signatures carried by a transaction
type SigVerifier interface {
	VerifySignatures(tx *vp.Tx) error
}

// UserVpRunner guards user accounts without executing their code. Anyone
// can credit the balances of an account. Any other change to the account's
// keys requires the account to be a verifier of the tx and to have signed it
// with the public key stored at [vp.PublicKeyKey].
type UserVpRunner struct{}

func (UserVpRunner) Run(ctx *vp.Ctx, _ []byte) (bool, error) {
	addr := ctx.Address()
	verifiers := ctx.Verifiers()
	if verifiers.Contains(addr) {
		signed, err := ctx.SignedBy(addr)
		if err != nil || signed {
			return signed, err
		}
	}

	subspace := storage.AddressKey(addr).String()
	for _, key := range ctx.KeysChanged().List() {
		_, owner, ok := token.IsAnyTokenBalanceKey(key)
		switch {
		case ok && owner == addr:
			pre, err := readAmount(ctx.ReadPre, key)
			if err != nil {
				return false, err
			}
			post, err := readAmount(ctx.ReadPost, key)
			if err != nil {
				return false, err
			}
			if post.Lt(pre) {
				return false, nil
			}
		case ok:
			// [addr] is the token of the balance
		case key.FirstSegment() == subspace:
			return false, nil
		}
	}
	return true, nil
}

func readAmount(read func(storage.Key) ([]byte, error), key storage.Key) (*token.Amount, error) {
	b, err := read(key)
	if err != nil {
		return nil, err
	}
	return token.ParseAmount(b)
}
