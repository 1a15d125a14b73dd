// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/storage"
)

// NativeVp is a validity predicate built into the ledger.
//
// ValidateTx returns true if the state transition made by [tx] is acceptable
// and false if it must be rejected. [keysChanged] only holds the changed keys
// that belong to the predicate's address and [verifiers] the addresses that
// must authorize the transaction.
//
// An error means the validation itself could not be completed, e.g. the
// predicate ran out of gas. It must never be turned into a rejection.
type NativeVp interface {
	ValidateTx(tx *Tx, keysChanged storage.KeySet, verifiers set.Set[address.Address]) (bool, error)
}

// Factory creates the native validity predicate bound to [ctx]
type Factory func(ctx *Ctx) NativeVp
