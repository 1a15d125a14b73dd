// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

func TestParseWriteSet(t *testing.T) {
	require := require.New(t)

	w := &WriteSet{
		Verifiers: []address.Address{alice, address.Ibc},
		Writes:    []KeyValue{{Key: "a/b", Value: []byte{1}}},
		Deletes:   []string{"c"},
	}
	code, err := w.Bytes()
	require.NoError(err)

	parsed, err := ParseWriteSet(code)
	require.NoError(err)
	require.Equal(w, parsed)

	for _, invalid := range []*WriteSet{
		{Writes: []KeyValue{{Key: ""}}},
		{Writes: []KeyValue{{Key: "a//b"}}},
		{Deletes: []string{"/a"}},
		{Verifiers: []address.Address{{Kind: 9}}},
	} {
		code, err := invalid.Bytes()
		require.NoError(err)
		_, err = ParseWriteSet(code)
		require.Error(err)
	}
}

func TestWriteSetRunner(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	require.NoError(db.Put([]byte("c"), []byte{2}))

	w := &WriteSet{
		Verifiers: []address.Address{alice},
		Writes:    []KeyValue{{Key: "a/b", Value: []byte{1}}},
		Deletes:   []string{"c"},
	}
	code, err := w.Bytes()
	require.NoError(err)
	tx := &vp.Tx{GasLimit: testGasLimit, Code: code}
	require.NoError(tx.Initialize())

	writeLog := storage.NewWriteLog(db)
	meter := gas.NewTxMeter(testGasLimit)
	env := newTxEnv(context.Background(), writeLog, meter)
	require.NoError(WriteSetRunner{}.Run(context.Background(), tx, env))

	verifiers := env.Verifiers()
	require.True(verifiers.Contains(alice))
	require.Equal([]storage.Key{"a/b", "c"}, writeLog.KeysChanged().List())

	expectedGas := uint64(len(code))*gas.VMMemoryAccessGasPerByte +
		3*gas.StorageWriteGasPerByte + // "a/b"
		1*gas.StorageWriteGasPerByte + // value
		1*gas.StorageWriteGasPerByte // "c"
	require.Equal(expectedGas, meter.TxGas())

	has, err := writeLog.Has([]byte("c"))
	require.NoError(err)
	require.False(has)
}
