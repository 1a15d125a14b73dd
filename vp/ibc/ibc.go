// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ibc implements the native validity predicate of the IBC bridge
// account. The bridge consents to a transaction, e.g. as the minter of an
// IBC token, only when the relayer signed it.
package ibc

import (
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

var (
	_ vp.NativeVp = (*VP)(nil)
	_ vp.Factory  = New
)

// VP accepts a transaction iff it carries a signature by the relayer key
// stored at [vp.PublicKeyKey] of [address.Ibc]. Without a relayer key every
// transaction is rejected.
type VP struct {
	ctx *vp.Ctx
}

func New(ctx *vp.Ctx) vp.NativeVp {
	return &VP{ctx: ctx}
}

func (v *VP) ValidateTx(*vp.Tx, storage.KeySet, set.Set[address.Address]) (bool, error) {
	return v.ctx.SignedBy(address.Ibc)
}
