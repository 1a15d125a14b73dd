// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func newVpsGas(t require.TestingT, tx *TxMeter, usage uint64) *VpsGas {
	meter := NewVpMeter(tx)
	require.NoError(t, meter.Consume(usage))
	vpsGas := &VpsGas{}
	require.NoError(t, vpsGas.Set(meter))
	return vpsGas
}

func expectedBilled(usages []uint64) uint64 {
	var max, sum uint64
	for _, u := range usages {
		sum += u
		if u > max {
			max = u
		}
	}
	return max + (sum-max)/ParallelGasDivider
}

func TestVpsGasSetAndMerge(t *testing.T) {
	require := require.New(t)

	tx := NewTxMeter(txGasLimit)
	a := newVpsGas(t, tx, 100)
	b := newVpsGas(t, tx, 300)
	c := newVpsGas(t, tx, 55)

	require.NoError(a.Merge(b, tx))
	require.NoError(a.Merge(c, tx))

	max, ok := a.Max()
	require.True(ok)
	require.Equal(uint64(300), max)
	require.ElementsMatch([]uint64{100, 55}, a.Rest())

	gas, err := a.CurrentGas()
	require.NoError(err)
	require.Equal(uint64(300+155/10), gas)

	// merged aggregators are drained
	_, ok = b.Max()
	require.False(ok)
	require.Empty(b.Rest())
}

func TestVpsGasMergeIntoEmpty(t *testing.T) {
	require := require.New(t)

	tx := NewTxMeter(txGasLimit)
	total := &VpsGas{}
	require.NoError(total.Merge(newVpsGas(t, tx, 42), tx))

	gas, err := total.CurrentGas()
	require.NoError(err)
	require.Equal(uint64(42), gas)

	// merging an empty aggregator changes nothing
	require.NoError(total.Merge(&VpsGas{}, tx))
	gas, err = total.CurrentGas()
	require.NoError(err)
	require.Equal(uint64(42), gas)
}

func TestVpsGasSetTwicePanics(t *testing.T) {
	tx := NewTxMeter(txGasLimit)
	vpsGas := newVpsGas(t, tx, 1)
	require.Panics(t, func() {
		_ = vpsGas.Set(NewVpMeter(tx))
	})
}

func TestVpsGasSetChecksLimit(t *testing.T) {
	require := require.New(t)

	tx := txMeterWith(txGasLimit, txGasLimit-10)
	meter := NewVpMeter(tx)
	require.ErrorIs(meter.Consume(11), ErrTxGasExceeded)

	vpsGas := &VpsGas{}
	require.ErrorIs(vpsGas.Set(meter), ErrTxGasExceeded)
}

// Every predicate is within bounds on its own but the merged total is not.
func TestVpsGasMergeChecksLimit(t *testing.T) {
	require := require.New(t)

	tx := txMeterWith(1_000, 800)
	a := newVpsGas(t, tx, 100)
	rest := &VpsGas{}
	for i := 0; i < 11; i++ {
		require.NoError(rest.Merge(newVpsGas(t, tx, 100), tx))
	}
	// 100 + (11 * 100) / 10 = 210 on top of 800
	require.ErrorIs(a.Merge(rest, tx), ErrTxGasExceeded)
}

func TestVpsGasRestSumOverflow(t *testing.T) {
	require := require.New(t)

	vpsGas := &VpsGas{
		hasMax: true,
		max:    math.MaxUint64,
		rest:   []uint64{math.MaxUint64, 1},
	}
	_, err := vpsGas.CurrentGas()
	require.ErrorIs(err, ErrGasOverflow)
}

func TestAddVpsGas(t *testing.T) {
	require := require.New(t)

	tx := NewTxMeter(txGasLimit)
	require.NoError(tx.Consume(1_000))
	vpsGas := newVpsGas(t, tx, 500)
	require.NoError(vpsGas.Merge(newVpsGas(t, tx, 200), tx))

	require.NoError(tx.AddVpsGas(vpsGas))
	require.Equal(uint64(1_000+500+20), tx.TxGas())
}

func TestVpsGasOrderIndependence(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("billed gas does not depend on merge order", prop.ForAll(
		func(usages []uint64) bool {
			tx := NewTxMeter(math.MaxUint64)
			expected := expectedBilled(usages)

			forward := &VpsGas{}
			for _, u := range usages {
				if forward.Merge(newVpsGas(t, tx, u), tx) != nil {
					return false
				}
			}

			backward := &VpsGas{}
			for i := len(usages) - 1; i >= 0; i-- {
				if backward.Merge(newVpsGas(t, tx, usages[i]), tx) != nil {
					return false
				}
			}

			// pairwise tree reduction, as parallel branches would produce
			level := make([]*VpsGas, 0, len(usages))
			for _, u := range usages {
				level = append(level, newVpsGas(t, tx, u))
			}
			for len(level) > 1 {
				next := make([]*VpsGas, 0, (len(level)+1)/2)
				for i := 0; i < len(level); i += 2 {
					if i+1 < len(level) {
						if level[i+1].Merge(level[i], tx) != nil {
							return false
						}
						next = append(next, level[i+1])
					} else {
						next = append(next, level[i])
					}
				}
				level = next
			}

			forwardGas, err := forward.CurrentGas()
			if err != nil || forwardGas != expected {
				return false
			}
			backwardGas, err := backward.CurrentGas()
			if err != nil || backwardGas != expected {
				return false
			}
			treeGas, err := level[0].CurrentGas()
			return err == nil && treeGas == expected
		},
		gen.SliceOf(gen.UInt64Range(0, 1_000_000)).SuchThat(func(v []uint64) bool {
			return len(v) > 0
		}),
	))
	properties.TestingRun(t)
}

func TestVpsGasSerialization(t *testing.T) {
	require := require.New(t)

	tx := NewTxMeter(txGasLimit)
	vpsGas := newVpsGas(t, tx, 10)
	require.NoError(vpsGas.Merge(newVpsGas(t, tx, 20), tx))

	b, err := vpsGas.Bytes()
	require.NoError(err)

	parsed, err := ParseVpsGas(b)
	require.NoError(err)

	max, ok := parsed.Max()
	require.True(ok)
	require.Equal(uint64(20), max)
	require.Equal([]uint64{10}, parsed.Rest())
}

func TestParseVpsGasRejectsUnflaggedMax(t *testing.T) {
	require := require.New(t)

	b, err := vpsGasCodec.Marshal(codecVersion, &vpsGasState{Max: 5})
	require.NoError(err)

	_, err = ParseVpsGas(b)
	require.ErrorIs(err, errMaxWithoutFlag)
}
