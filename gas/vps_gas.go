// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"github.com/ava-labs/avalanchego/utils/math"
)

// VpsGas aggregates the gas of validity predicates that ran in parallel.
//
// Only the largest usage lies on the critical path and is billed in full.
// Every other usage overlapped with it and is billed at 1/[ParallelGasDivider].
type VpsGas struct {
	hasMax bool
	max    uint64
	rest   []uint64
}

// Set records the gas of a single predicate run. It must only be called on an
// empty aggregator.
func (v *VpsGas) Set(vpMeter VpMeter) error {
	if v.hasMax || len(v.rest) != 0 {
		panic("vps gas already set")
	}
	v.hasMax = true
	v.max = vpMeter.currentGas
	return v.checkLimit(&vpMeter)
}

// Merge folds [other] into [v] and drains [other]. The billed total does not
// depend on the order merges are applied in.
func (v *VpsGas) Merge(other *VpsGas, txMeter *TxMeter) error {
	switch {
	case !v.hasMax && other.hasMax:
		v.hasMax = true
		v.max = other.max
	case v.hasMax && other.hasMax:
		if v.max < other.max {
			v.rest = append(v.rest, v.max)
			v.max = other.max
		} else {
			v.rest = append(v.rest, other.max)
		}
	}
	v.rest = append(v.rest, other.rest...)

	other.hasMax = false
	other.max = 0
	other.rest = nil

	return v.checkLimit(txMeter)
}

// CurrentGas returns the gas billed for the parallel predicate runs
func (v *VpsGas) CurrentGas() (uint64, error) {
	var sum uint64
	for _, gas := range v.rest {
		var err error
		sum, err = math.Add64(sum, gas)
		if err != nil {
			return 0, ErrGasOverflow
		}
	}
	total, err := math.Add64(v.max, sum/ParallelGasDivider)
	if err != nil {
		return 0, ErrGasOverflow
	}
	return total, nil
}

// Max returns the critical path usage, if any predicate was recorded
func (v *VpsGas) Max() (uint64, bool) { return v.max, v.hasMax }

// Rest returns every usage other than the critical path
func (v *VpsGas) Rest() []uint64 { return v.rest }

func (v *VpsGas) checkLimit(m Meter) error {
	gas, err := v.CurrentGas()
	if err != nil {
		return err
	}
	total, err := math.Add64(m.TxGas(), gas)
	if err != nil {
		return ErrGasOverflow
	}
	if total > m.Limit() {
		return ErrTxGasExceeded
	}
	return nil
}
