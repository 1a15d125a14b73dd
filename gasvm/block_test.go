// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/gasvm/vp"
)

func TestBlockSerialization(t *testing.T) {
	require := require.New(t)

	tx := &vp.Tx{ChainID: chainID, GasLimit: testGasLimit, Data: []byte{1}}
	blk, err := NewBlock(ids.GenerateTestID(), 3, time.Unix(100, 0), []*vp.Tx{tx})
	require.NoError(err)
	require.NotEqual(ids.Empty, tx.ID())

	parsed, err := ParseBlock(blk.Bytes())
	require.NoError(err)
	require.Equal(blk.ID(), parsed.ID())
	require.Equal(blk.Parent(), parsed.Parent())
	require.Equal(blk.Height(), parsed.Height())
	require.Equal(blk.Timestamp(), parsed.Timestamp())
	require.Len(parsed.Txs, 1)
	require.Equal(tx.ID(), parsed.Txs[0].ID())
}

func TestBlockVerify(t *testing.T) {
	now := time.Unix(10_000, 0)
	parent, err := NewBlock(ids.Empty, 0, time.Unix(1_000, 0), nil)
	require.NoError(t, err)

	tx := &vp.Tx{ChainID: chainID, GasLimit: testGasLimit}

	tests := []struct {
		name        string
		parentID    ids.ID
		height      uint64
		timestamp   time.Time
		txs         []*vp.Tx
		expectedErr error
	}{
		{
			name:      "valid",
			parentID:  parent.ID(),
			height:    1,
			timestamp: now,
			txs:       []*vp.Tx{tx},
		},
		{
			name:        "wrong parent",
			parentID:    ids.GenerateTestID(),
			height:      1,
			timestamp:   now,
			expectedErr: errWrongParent,
		},
		{
			name:        "wrong height",
			parentID:    parent.ID(),
			height:      2,
			timestamp:   now,
			expectedErr: errWrongHeight,
		},
		{
			name:        "timestamp before parent",
			parentID:    parent.ID(),
			height:      1,
			timestamp:   time.Unix(999, 0),
			expectedErr: errTimestampTooEarly,
		},
		{
			name:        "timestamp too far ahead",
			parentID:    parent.ID(),
			height:      1,
			timestamp:   now.Add(2 * time.Hour),
			expectedErr: errTimestampTooLate,
		},
		{
			name:        "duplicate tx",
			parentID:    parent.ID(),
			height:      1,
			timestamp:   now,
			txs:         []*vp.Tx{tx, tx},
			expectedErr: errDuplicateTx,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			blk, err := NewBlock(test.parentID, test.height, test.timestamp, test.txs)
			require.NoError(err)
			require.ErrorIs(blk.Verify(parent, now), test.expectedErr)
		})
	}
}
