// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/metercacher"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/gasvm/gas"
)

// codeCache remembers the hashes of the code a runner already validated.
// Compilation is charged on every use so the gas of a tx never depends on
// the content of the cache.
type codeCache struct {
	validator CodeValidator
	validated cache.Cacher[ids.ID, struct{}]
}

// newCodeCache returns a cache for the code run by [runner]. Nothing is
// validated if [runner] is not a [CodeValidator].
func newCodeCache(namespace string, size int, runner interface{}, registerer prometheus.Registerer) (*codeCache, error) {
	validated, err := metercacher.New[ids.ID, struct{}](
		namespace,
		registerer,
		&cache.LRU[ids.ID, struct{}]{Size: size},
	)
	if err != nil {
		return nil, err
	}
	validator, _ := runner.(CodeValidator)
	return &codeCache{
		validator: validator,
		validated: validated,
	}, nil
}

// prepare charges the compilation of [code] with [charge] and validates it
// if it wasn't seen before.
func (c *codeCache) prepare(charge func(bytesLen uint64) error, code []byte) error {
	codeLen, err := gas.BytesLen(code)
	if err != nil {
		return err
	}
	if err := charge(codeLen); err != nil {
		return err
	}
	if c.validator == nil || len(code) == 0 {
		return nil
	}

	codeHash := ids.ID(hashing.ComputeHash256Array(code))
	if _, ok := c.validated.Get(codeHash); ok {
		return nil
	}
	if err := c.validator.ValidateCode(code); err != nil {
		return err
	}
	c.validated.Put(codeHash, struct{}{})
	return nil
}
