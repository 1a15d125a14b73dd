// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	testifyrequire "github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
)

func TestSignedBy(t *testing.T) {
	require := require.New(t)

	factory := secp256k1.Factory{}
	aliceKey, err := factory.NewPrivateKey()
	require.NoError(err)
	otherKey, err := factory.NewPrivateKey()
	require.NoError(err)

	alice := address.NewEstablished(ids.GenerateTestShortID())
	bob := address.NewEstablished(ids.GenerateTestShortID())
	corrupt := address.NewEstablished(ids.GenerateTestShortID())

	db := memdb.New()
	require.NoError(db.Put(PublicKeyKey(alice).Bytes(), aliceKey.PublicKey().Bytes()))
	require.NoError(db.Put(PublicKeyKey(corrupt).Bytes(), []byte{1, 2, 3}))

	newCtx := func(tx *Tx) *Ctx {
		writeLog := storage.NewWriteLog(db)
		// a key written by the tx itself is not trusted
		require.NoError(writeLog.Write(PublicKeyKey(bob), otherKey.PublicKey().Bytes()))
		return NewCtx(
			context.Background(),
			alice,
			writeLog.Pre(),
			writeLog,
			tx,
			gas.NewVpMeter(gas.NewTxMeter(1_000_000)),
			writeLog.KeysChanged(),
			set.NewSet[address.Address](0),
		)
	}

	tests := []struct {
		name        string
		keys        []*secp256k1.PrivateKey
		addr        address.Address
		signed      bool
		expectedErr error
	}{
		{
			name:   "signed",
			keys:   []*secp256k1.PrivateKey{otherKey, aliceKey},
			addr:   alice,
			signed: true,
		},
		{
			name: "unsigned",
			addr: alice,
		},
		{
			name: "signed by another key",
			keys: []*secp256k1.PrivateKey{otherKey},
			addr: alice,
		},
		{
			name: "public key written by the tx",
			keys: []*secp256k1.PrivateKey{otherKey},
			addr: bob,
		},
		{
			name:        "corrupt public key",
			keys:        []*secp256k1.PrivateKey{aliceKey},
			addr:        corrupt,
			expectedErr: ErrInvalidPublicKey,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := testifyrequire.New(t)

			tx := &Tx{GasLimit: 1_000_000, Data: []byte("transfer")}
			require.NoError(tx.Sign(test.keys...))

			ctx := newCtx(tx)
			signed, err := ctx.SignedBy(test.addr)
			require.ErrorIs(err, test.expectedErr)
			require.Equal(test.signed, signed)
		})
	}
}

func TestSignatureBoundToTx(t *testing.T) {
	require := require.New(t)

	factory := secp256k1.Factory{}
	key, err := factory.NewPrivateKey()
	require.NoError(err)

	signed := &Tx{GasLimit: 1_000_000, Data: []byte{1}}
	require.NoError(signed.Sign(key))

	// the signature of another tx is replayed
	replayed := &Tx{GasLimit: 1_000_000, Data: []byte{2}, Signatures: signed.Signatures}
	require.NoError(replayed.Initialize())

	addr := address.NewEstablished(ids.GenerateTestShortID())
	db := memdb.New()
	require.NoError(db.Put(PublicKeyKey(addr).Bytes(), key.PublicKey().Bytes()))
	writeLog := storage.NewWriteLog(db)

	ctx := NewCtx(
		context.Background(),
		addr,
		writeLog.Pre(),
		writeLog,
		replayed,
		gas.NewVpMeter(gas.NewTxMeter(1_000_000)),
		writeLog.KeysChanged(),
		set.NewSet[address.Address](0),
	)
	ok, err := ctx.SignedBy(addr)
	require.NoError(err)
	require.False(ok)
	// the public key read is charged
	require.EqualValues(len(key.PublicKey().Bytes()), currentGas(ctx))
}
