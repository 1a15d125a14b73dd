// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"errors"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
)

const codecVersion = 0

var (
	errWrongCodecVersion = errors.New("wrong codec version")
	errMaxWithoutFlag    = errors.New("max gas set without being flagged")

	vpsGasCodec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()
	vpsGasCodec = codec.NewDefaultManager()
	if err := vpsGasCodec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}

// vpsGasState is the serialized form of VpsGas: an optional u64 followed by a
// sequence of u64.
type vpsGasState struct {
	HasMax bool     `serialize:"true"`
	Max    uint64   `serialize:"true"`
	Rest   []uint64 `serialize:"true"`
}

// Bytes serializes the aggregator so it can cross a process boundary
func (v *VpsGas) Bytes() ([]byte, error) {
	return vpsGasCodec.Marshal(codecVersion, &vpsGasState{
		HasMax: v.hasMax,
		Max:    v.max,
		Rest:   v.rest,
	})
}

// ParseVpsGas deserializes an aggregator produced by [VpsGas.Bytes]
func ParseVpsGas(b []byte) (*VpsGas, error) {
	state := vpsGasState{}
	version, err := vpsGasCodec.Unmarshal(b, &state)
	if err != nil {
		return nil, err
	}
	if version != codecVersion {
		return nil, errWrongCodecVersion
	}
	if !state.HasMax && state.Max != 0 {
		return nil, errMaxWithoutFlag
	}
	return &VpsGas{
		hasMax: state.HasMax,
		max:    state.Max,
		rest:   state.Rest,
	}, nil
}
