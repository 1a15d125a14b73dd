// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
)

func TestTxSerialization(t *testing.T) {
	require := require.New(t)

	tx := &Tx{
		ChainID:    ids.GenerateTestID(),
		GasLimit:   2_000_000,
		Code:       []byte{0x00, 0x61, 0x73, 0x6d},
		Data:       []byte("data"),
		Signatures: [][]byte{{1}, {2, 3}},
	}
	require.ErrorIs(tx.Verify(), errNotInitialized)
	require.NoError(tx.Initialize())
	require.NoError(tx.Verify())
	require.NotEqual(ids.Empty, tx.ID())

	parsed, err := ParseTx(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.ChainID, parsed.ChainID)
	require.Equal(tx.GasLimit, parsed.GasLimit)
	require.Equal(tx.Code, parsed.Code)
	require.Equal(tx.Data, parsed.Data)
	require.Equal(tx.Signatures, parsed.Signatures)

	_, err = ParseTx([]byte{0xff})
	require.Error(err)
}

func TestTxSign(t *testing.T) {
	require := require.New(t)

	factory := secp256k1.Factory{}
	key, err := factory.NewPrivateKey()
	require.NoError(err)

	tx := &Tx{GasLimit: 1_000_000, Code: []byte{1}}
	require.NoError(tx.Initialize())
	unsigned := tx.UnsignedBytes()

	require.NoError(tx.Sign(key))
	require.Len(tx.Signatures, 1)
	require.Equal(unsigned, tx.UnsignedBytes())
	require.True(key.PublicKey().Verify(unsigned, tx.Signatures[0]))

	parsed, err := ParseTx(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(unsigned, parsed.UnsignedBytes())
}
