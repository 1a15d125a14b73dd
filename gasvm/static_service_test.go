// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/utils/formatting"

	"github.com/ava-labs/gasvm/gas"
)

func TestStaticServiceGasLimit(t *testing.T) {
	require := require.New(t)

	ss := CreateStaticService()

	limitReply := GasLimitReply{}
	require.NoError(ss.RoundGasLimit(nil, &GasLimitArgs{GasLimit: 1_500_000}, &limitReply))
	require.EqualValues(2_000_000, limitReply.GasLimit)
	require.EqualValues(2, limitReply.Multiplier)

	feeReply := FeeReply{}
	require.NoError(ss.Fee(nil, &FeeArgs{GasLimit: 1_500_000, FeePerGasUnit: 3}, &feeReply))
	require.EqualValues(6_000_000, feeReply.Fee)

	require.Error(ss.Fee(nil, &FeeArgs{GasLimit: 1_000_000, FeePerGasUnit: 1 << 60}, &feeReply))

	refundReply := RefundReply{}
	require.NoError(ss.Refund(nil, &RefundArgs{GasLimit: 2_000_000, GasUsed: 1_250_000}, &refundReply))
	require.EqualValues(750_000, refundReply.Refund)
	require.NoError(ss.Refund(nil, &RefundArgs{GasLimit: 2_000_000, GasUsed: 1}, &refundReply))
	require.EqualValues(gas.LimitResolution, refundReply.Refund)
	require.NoError(ss.Refund(nil, &RefundArgs{GasLimit: 2_000_000, GasUsed: 2_000_001}, &refundReply))
	require.Zero(refundReply.Refund)
}

func TestStaticServiceMergeVpsGas(t *testing.T) {
	require := require.New(t)

	encoded := make([]string, 0, 3)
	for _, used := range []uint64{100, 300, 200} {
		meter := gas.NewTxMeter(testGasLimit)
		vpMeter := gas.NewVpMeter(meter)
		require.NoError(vpMeter.Consume(used))
		vpsGas := &gas.VpsGas{}
		require.NoError(vpsGas.Set(vpMeter))

		b, err := vpsGas.Bytes()
		require.NoError(err)
		str, err := formatting.Encode(formatting.Hex, b)
		require.NoError(err)
		encoded = append(encoded, str)
	}

	ss := CreateStaticService()
	reply := MergeVpsGasReply{}
	require.NoError(ss.MergeVpsGas(nil, &MergeVpsGasArgs{VpsGas: encoded, Encoding: formatting.Hex}, &reply))
	require.EqualValues(300+(100+200)/gas.ParallelGasDivider, reply.Billed)

	b, err := formatting.Decode(formatting.Hex, reply.VpsGas)
	require.NoError(err)
	merged, err := gas.ParseVpsGas(b)
	require.NoError(err)
	maxGas, ok := merged.Max()
	require.True(ok)
	require.EqualValues(300, maxGas)
	require.ElementsMatch([]uint64{100, 200}, merged.Rest())

	err = ss.MergeVpsGas(nil, &MergeVpsGasArgs{VpsGas: []string{"0xzz"}, Encoding: formatting.Hex}, &reply)
	require.Error(err)
}
