// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"github.com/ava-labs/avalanchego/utils/math"
)

var (
	_ Meter = (*TxMeter)(nil)
	_ Meter = (*VpMeter)(nil)
)

// Meter is shared by the transaction and the validity predicate gas meters.
type Meter interface {
	// Consume adds [gas] to the running total. It returns an error when the
	// total exceeds the transaction gas limit, but the total is still updated.
	// Only an arithmetic overflow leaves the meter untouched.
	Consume(gas uint64) error

	// TxGas returns the gas consumed by the transaction alone
	TxGas() uint64

	// Limit returns the transaction gas limit
	Limit() uint64
}

// TxMeter tracks the gas consumed by a transaction
type TxMeter struct {
	limit    uint64
	consumed uint64
}

// NewTxMeter returns a meter for a transaction allowed to consume [limit] gas
func NewTxMeter(limit uint64) *TxMeter {
	return &TxMeter{limit: limit}
}

func (m *TxMeter) Consume(gas uint64) error {
	consumed, err := math.Add64(m.consumed, gas)
	if err != nil {
		return ErrGasOverflow
	}
	m.consumed = consumed

	if m.consumed > m.limit {
		return ErrTxGasExceeded
	}
	return nil
}

func (m *TxMeter) TxGas() uint64 { return m.consumed }

func (m *TxMeter) Limit() uint64 { return m.limit }

// Remaining returns the gas that can still be consumed before the limit is hit
func (m *TxMeter) Remaining() uint64 {
	if m.consumed >= m.limit {
		return 0
	}
	return m.limit - m.consumed
}

// AddTxSizeGas charges for the space the transaction requires in the block
func (m *TxMeter) AddTxSizeGas(txBytes []byte) error {
	bytesLen, err := BytesLen(txBytes)
	if err != nil {
		return err
	}
	return chargePerByte(m, bytesLen, TxSizeGasPerByte)
}

// AddVpsGas charges the gas used by the validity predicates triggered by this
// transaction.
func (m *TxMeter) AddVpsGas(vpsGas *VpsGas) error {
	gas, err := vpsGas.CurrentGas()
	if err != nil {
		return err
	}
	return m.Consume(gas)
}

// VpMeter tracks the gas consumed by a single validity predicate run. It is a
// value: every predicate owns its own copy and never touches the TxMeter it
// was created from.
type VpMeter struct {
	limit uint64
	// gas used by the transaction before the predicate ran
	initialGas uint64
	// gas used by the predicate itself
	currentGas uint64
}

// NewVpMeter snapshots [txMeter] for a new validity predicate run
func NewVpMeter(txMeter *TxMeter) VpMeter {
	return VpMeter{
		limit:      txMeter.limit,
		initialGas: txMeter.consumed,
	}
}

func (m *VpMeter) Consume(gas uint64) error {
	currentGas, err := math.Add64(m.currentGas, gas)
	if err != nil {
		return ErrGasOverflow
	}
	total, err := math.Add64(m.initialGas, currentGas)
	if err != nil {
		return ErrGasOverflow
	}
	m.currentGas = currentGas

	if total > m.limit {
		return ErrTxGasExceeded
	}
	return nil
}

func (m *VpMeter) TxGas() uint64 { return m.initialGas }

func (m *VpMeter) Limit() uint64 { return m.limit }

// CurrentGas returns the gas consumed by the predicate alone
func (m *VpMeter) CurrentGas() uint64 { return m.currentGas }

// BytesLen converts the length of [b] to the accounting width
func BytesLen(b []byte) (uint64, error) {
	n := len(b)
	if n < 0 {
		return 0, ErrConversion
	}
	return uint64(n), nil
}

func chargePerByte(m Meter, bytesLen uint64, costPerByte uint64) error {
	cost, err := math.Mul64(bytesLen, costPerByte)
	if err != nil {
		return ErrGasOverflow
	}
	return m.Consume(cost)
}

// AddCompilingGas charges for compiling [bytesLen] bytes of wasm code
func AddCompilingGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, CompileGasPerByte)
}

// AddWasmLoadFromStorageGas charges for loading [bytesLen] bytes of wasm code
// from storage
func AddWasmLoadFromStorageGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, StorageAccessGasPerByte)
}

// AddWasmValidationGas charges for validating [bytesLen] bytes of wasm code
func AddWasmValidationGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, WasmValidationGasPerByte)
}

// AddStorageAccessGas charges for reading [bytesLen] bytes from storage
func AddStorageAccessGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, StorageAccessGasPerByte)
}

// AddStorageWriteGas charges for writing [bytesLen] bytes to storage
func AddStorageWriteGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, StorageWriteGasPerByte)
}

// AddWasmMemoryAccessGas charges for accessing [bytesLen] bytes of the vm
// memory
func AddWasmMemoryAccessGas(m Meter, bytesLen uint64) error {
	return chargePerByte(m, bytesLen, VMMemoryAccessGasPerByte)
}

// AddSigVerificationGas charges for verifying [numSigs] signatures
func AddSigVerificationGas(m Meter, numSigs uint64) error {
	return chargePerByte(m, numSigs, VerifyTxSigGasCost)
}
