// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
)

func vpMeterUsing(t *testing.T, txMeter *gas.TxMeter, used uint64) gas.VpMeter {
	meter := gas.NewVpMeter(txMeter)
	require.NoError(t, meter.Consume(used))
	return meter
}

func TestFoldVpsGas(t *testing.T) {
	require := require.New(t)

	txMeter := gas.NewTxMeter(10_000)
	require.NoError(txMeter.Consume(1_000))

	outcomes := []vpOutcome{
		{addr: alice, accepted: true, meter: vpMeterUsing(t, txMeter, 500)},
		{addr: bob, accepted: true, meter: vpMeterUsing(t, txMeter, 2_000)},
		{addr: address.Multitoken, accepted: false, meter: vpMeterUsing(t, txMeter, 300)},
	}
	vpsGas, err := foldVpsGas(outcomes, txMeter)
	require.NoError(err)
	billed, err := vpsGas.CurrentGas()
	require.NoError(err)
	require.EqualValues(2_000+(500+300)/gas.ParallelGasDivider, billed)

	require.NoError(txMeter.AddVpsGas(vpsGas))
	require.EqualValues(1_000+billed, txMeter.TxGas())
}

func TestFoldVpsGasExceedsLimit(t *testing.T) {
	require := require.New(t)

	txMeter := gas.NewTxMeter(3_000)
	outcomes := []vpOutcome{
		{addr: alice, meter: vpMeterUsing(t, txMeter, 2_900)},
		{addr: bob, meter: vpMeterUsing(t, txMeter, 2_900)},
	}

	// the limit is enforced when the billed gas is charged
	vpsGas, err := foldVpsGas(outcomes, txMeter)
	require.NoError(err)
	require.ErrorIs(txMeter.AddVpsGas(vpsGas), gas.ErrTxGasExceeded)
	require.EqualValues(2_900+290, txMeter.TxGas())
}

func TestDefaultNativeVps(t *testing.T) {
	require := require.New(t)

	nativeVps := DefaultNativeVps()
	require.Contains(nativeVps, address.Multitoken)
	require.Contains(nativeVps, address.Ibc)
}
