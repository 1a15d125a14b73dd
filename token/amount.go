// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// AmountLen is the length of a serialized amount
const AmountLen = 32

var errInvalidAmount = errors.New("invalid amount encoding")

// Amount is an unsigned 256-bit token amount
type Amount = uint256.Int

func NewAmount(v uint64) *Amount {
	return uint256.NewInt(v)
}

// ParseAmount decodes a big-endian amount. A missing value decodes as zero.
func ParseAmount(b []byte) (*Amount, error) {
	switch len(b) {
	case 0:
		return new(Amount), nil
	case AmountLen:
		return new(Amount).SetBytes32(b), nil
	default:
		return nil, fmt.Errorf("%w: expected %d bytes but got %d", errInvalidAmount, AmountLen, len(b))
	}
}

// AmountBytes encodes [a] as 32 big-endian bytes
func AmountBytes(a *Amount) []byte {
	b := a.Bytes32()
	return b[:]
}

// CheckedAdd returns a+b, or false if the sum overflows
func CheckedAdd(a, b *Amount) (*Amount, bool) {
	sum, overflow := new(Amount).AddOverflow(a, b)
	return sum, !overflow
}

// CheckedSub returns a-b, or false if b is larger than a
func CheckedSub(a, b *Amount) (*Amount, bool) {
	if a.Lt(b) {
		return nil, false
	}
	return new(Amount).Sub(a, b), true
}
