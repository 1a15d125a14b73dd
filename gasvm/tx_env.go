// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
)

// validityPredicateSegment is the key segment under which an account stores
// its validity predicate code
const validityPredicateSegment = "?"

var errInvalidVerifier = errors.New("invalid verifier")

// ValidityPredicateKey returns the key of the validity predicate of [addr]
func ValidityPredicateKey(addr address.Address) storage.Key {
	return storage.Join(addr.String(), validityPredicateSegment)
}

// TxEnv is the host environment of a running transaction. Every access is
// charged to the tx gas meter before it happens.
type TxEnv struct {
	ctx       context.Context
	writeLog  *storage.WriteLog
	meter     *gas.TxMeter
	verifiers set.Set[address.Address]
}

func newTxEnv(ctx context.Context, writeLog *storage.WriteLog, meter *gas.TxMeter) *TxEnv {
	return &TxEnv{
		ctx:       ctx,
		writeLog:  writeLog,
		meter:     meter,
		verifiers: set.NewSet[address.Address](0),
	}
}

// Read returns the value of [key] including the tx's own writes, or nil if
// the key doesn't exist
func (e *TxEnv) Read(key storage.Key) ([]byte, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	value, err := e.writeLog.Get(key.Bytes())
	switch {
	case err == database.ErrNotFound:
		value = nil
	case err != nil:
		return nil, err
	}
	bytesLen, err := gas.BytesLen(value)
	if err != nil {
		return nil, err
	}
	if err := gas.AddStorageAccessGas(e.meter, bytesLen); err != nil {
		return nil, err
	}
	return value, nil
}

// Has is charged for the length of [key]
func (e *TxEnv) Has(key storage.Key) (bool, error) {
	if err := e.chargeKey(gas.AddStorageAccessGas, key); err != nil {
		return false, err
	}
	return e.writeLog.Has(key.Bytes())
}

// Write is charged for the length of [key] and [value]
func (e *TxEnv) Write(key storage.Key, value []byte) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if err := e.chargeKey(gas.AddStorageWriteGas, key); err != nil {
		return err
	}
	valueLen, err := gas.BytesLen(value)
	if err != nil {
		return err
	}
	if err := gas.AddStorageWriteGas(e.meter, valueLen); err != nil {
		return err
	}
	return e.writeLog.Write(key, value)
}

// Delete is charged for the length of [key]
func (e *TxEnv) Delete(key storage.Key) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if err := e.chargeKey(gas.AddStorageWriteGas, key); err != nil {
		return err
	}
	return e.writeLog.Delete(key)
}

// InsertVerifier requires the validity predicate of [addr] to run
func (e *TxEnv) InsertVerifier(addr address.Address) error {
	if err := addr.Verify(); err != nil {
		return fmt.Errorf("%w: %s", errInvalidVerifier, err)
	}
	e.verifiers.Add(addr)
	return nil
}

// UpdateValidityPredicate replaces the predicate code of [addr]. The code is
// charged for validation on top of the write.
func (e *TxEnv) UpdateValidityPredicate(addr address.Address, code []byte) error {
	bytesLen, err := gas.BytesLen(code)
	if err != nil {
		return err
	}
	if err := gas.AddWasmValidationGas(e.meter, bytesLen); err != nil {
		return err
	}
	return e.Write(ValidityPredicateKey(addr), code)
}

// ChargeMemoryAccess charges for [bytesLen] bytes copied in or out of the tx
// runner's memory
func (e *TxEnv) ChargeMemoryAccess(bytesLen uint64) error {
	return gas.AddWasmMemoryAccessGas(e.meter, bytesLen)
}

// Meter returns the tx gas meter
func (e *TxEnv) Meter() gas.Meter { return e.meter }

// Verifiers returns the addresses inserted with [TxEnv.InsertVerifier]
func (e *TxEnv) Verifiers() set.Set[address.Address] { return e.verifiers }

func (e *TxEnv) chargeKey(charge func(gas.Meter, uint64) error, key storage.Key) error {
	keyLen, err := gas.BytesLen(key.Bytes())
	if err != nil {
		return err
	}
	return charge(e.meter, keyLen)
}
