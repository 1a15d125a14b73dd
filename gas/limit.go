// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"errors"
	"strconv"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// LimitResolution is the granularity of transaction gas limits. Rounding the
// requested limit up limits how much a wrapper leaks about the real usage of
// the transaction it carries.
const LimitResolution uint64 = 1_000_000

const maxMultiplier = ^uint64(0) / LimitResolution

var errLimitTooLarge = errors.New("gas limit is too large")

// Limit is a transaction gas limit. Only the multiple of [LimitResolution] is
// stored.
type Limit struct {
	multiplier uint64
}

// NewLimit rounds [amount] up to the next multiple of [LimitResolution]
func NewLimit(amount uint64) (Limit, error) {
	multiplier := amount / LimitResolution
	if multiplier*LimitResolution < amount {
		multiplier++
	}
	return LimitFromMultiplier(multiplier)
}

// LimitFromMultiplier returns the limit of [multiplier]*[LimitResolution] gas
func LimitFromMultiplier(multiplier uint64) (Limit, error) {
	if multiplier > maxMultiplier {
		return Limit{}, errLimitTooLarge
	}
	return Limit{multiplier: multiplier}, nil
}

// ParseLimit parses a multiplier of [LimitResolution]
func ParseLimit(s string) (Limit, error) {
	multiplier, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Limit{}, err
	}
	return LimitFromMultiplier(multiplier)
}

func (l Limit) Multiplier() uint64 { return l.multiplier }

// Uint64 returns the raw gas amount of the limit
func (l Limit) Uint64() uint64 { return l.multiplier * LimitResolution }

// Refund returns the unused gas to give back, capped at [LimitResolution]
func (l Limit) Refund(usedGas uint64) uint64 {
	limit := l.Uint64()
	switch {
	case usedGas >= limit:
		// the limit was under estimated
		return 0
	case usedGas < limit-LimitResolution:
		return LimitResolution
	default:
		return limit - usedGas
	}
}

// Fee returns the fee owed for the whole limit at [amountPerGasUnit]
func (l Limit) Fee(amountPerGasUnit uint64) (uint64, error) {
	fee, err := safemath.Mul64(l.Uint64(), amountPerGasUnit)
	if err != nil {
		return 0, ErrFeeOverflow
	}
	return fee, nil
}

func (l Limit) String() string { return strconv.FormatUint(l.Uint64(), 10) }

// MarshalJSON encodes the raw gas amount
func (l Limit) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(l.Uint64(), 10)), nil
}

// UnmarshalJSON decodes a raw gas amount, rounding it up
func (l *Limit) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	amount, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return err
	}
	limit, err := NewLimit(amount)
	if err != nil {
		return err
	}
	*l = limit
	return nil
}
