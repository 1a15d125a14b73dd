// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import "errors"

var (
	ErrTxGasExceeded    = errors.New("transaction gas limit exceeded")
	ErrBlockGasExceeded = errors.New("block gas limit exceeded")
	ErrGasOverflow      = errors.New("overflow during gas operations")
	ErrConversion       = errors.New("error converting to u64")
	ErrFeeOverflow      = errors.New("the given tx fee amount overflowed")
)
