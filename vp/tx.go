// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"errors"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

const codecVersion = 0

var (
	errWrongCodecVersion = errors.New("wrong codec version")
	errNotInitialized    = errors.New("tx is not initialized")

	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}

// Tx is a decrypted transaction whose signatures have been checked by the
// wrapping layer.
type Tx struct {
	ChainID ids.ID `serialize:"true" json:"chainID"`
	// GasLimit is the raw limit resolved by the wrapper
	GasLimit   uint64   `serialize:"true" json:"gasLimit"`
	Code       []byte   `serialize:"true" json:"code"`
	Data       []byte   `serialize:"true" json:"data"`
	Signatures [][]byte `serialize:"true" json:"signatures"`

	id            ids.ID
	bytes         []byte
	unsignedBytes []byte
}

// Initialize computes the serialized form and the ID of [tx]
func (tx *Tx) Initialize() error {
	bytes, err := Codec.Marshal(codecVersion, tx)
	if err != nil {
		return err
	}
	return tx.initialize(bytes)
}

func (tx *Tx) initialize(bytes []byte) error {
	unsigned := &Tx{
		ChainID:  tx.ChainID,
		GasLimit: tx.GasLimit,
		Code:     tx.Code,
		Data:     tx.Data,
	}
	unsignedBytes, err := Codec.Marshal(codecVersion, unsigned)
	if err != nil {
		return err
	}
	tx.bytes = bytes
	tx.unsignedBytes = unsignedBytes
	tx.id = hashing.ComputeHash256Array(bytes)
	return nil
}

// Sign replaces the signatures of [tx] with a signature of its unsigned
// bytes by each of [keys], then initializes it
func (tx *Tx) Sign(keys ...*secp256k1.PrivateKey) error {
	tx.Signatures = nil
	if err := tx.Initialize(); err != nil {
		return err
	}
	sigs := make([][]byte, len(keys))
	for i, key := range keys {
		sig, err := key.Sign(tx.unsignedBytes)
		if err != nil {
			return err
		}
		sigs[i] = sig
	}
	tx.Signatures = sigs
	return tx.Initialize()
}

func (tx *Tx) ID() ids.ID { return tx.id }

// Bytes returns the serialized tx. [Tx.Initialize] must have been called.
func (tx *Tx) Bytes() []byte { return tx.bytes }

// UnsignedBytes returns the serialized tx without its signatures. This is
// the message covered by every signature.
func (tx *Tx) UnsignedBytes() []byte { return tx.unsignedBytes }

// Verify returns nil iff [tx] was initialized
func (tx *Tx) Verify() error {
	if tx.bytes == nil {
		return errNotInitialized
	}
	return nil
}

// ParseTx deserializes a tx and initializes it
func ParseTx(b []byte) (*Tx, error) {
	tx := &Tx{}
	version, err := Codec.Unmarshal(b, tx)
	if err != nil {
		return nil, err
	}
	if version != codecVersion {
		return nil, errWrongCodecVersion
	}
	return tx, tx.initialize(b)
}
