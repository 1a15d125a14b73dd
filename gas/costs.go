// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

// Gas costs are consensus critical. Every replica must charge exactly these
// amounts.
const (
	// TxSizeGasPerByte is the cost of the space a transaction takes in a block
	TxSizeGasPerByte uint64 = 10
	// CompileGasPerByte is the cost of compiling wasm code
	CompileGasPerByte uint64 = 1
	// StorageAccessGasPerByte is the cost of reading from storage
	StorageAccessGasPerByte uint64 = 1
	// StorageWriteGasPerByte is the cost of writing to storage
	StorageWriteGasPerByte uint64 = 100
	// VerifyTxSigGasCost is the flat cost of verifying one signature
	VerifyTxSigGasCost uint64 = 10
	// WasmValidationGasPerByte is the cost of validating wasm vp code
	WasmValidationGasPerByte uint64 = 1
	// VMMemoryAccessGasPerByte is the cost of accessing the wasm memory
	VMMemoryAccessGasPerByte uint64 = 1

	// ParallelGasDivider is the discount applied to every vp that did not lie
	// on the critical path of a parallel run.
	ParallelGasDivider uint64 = 10
)
