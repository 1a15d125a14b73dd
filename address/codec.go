// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

import (
	"errors"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
)

const codecVersion = 0

var (
	errWrongCodecVersion = errors.New("wrong codec version")

	addressCodec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()
	addressCodec = codec.NewDefaultManager()
	if err := addressCodec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}

// Bytes returns the storage representation of [a]
func (a Address) Bytes() ([]byte, error) {
	return addressCodec.Marshal(codecVersion, &a)
}

// FromBytes parses an address written with [Address.Bytes]
func FromBytes(b []byte) (Address, error) {
	a := Address{}
	version, err := addressCodec.Unmarshal(b, &a)
	if err != nil {
		return Address{}, err
	}
	if version != codecVersion {
		return Address{}, errWrongCodecVersion
	}
	return a, a.Verify()
}
