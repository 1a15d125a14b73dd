// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vp

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
)

var (
	ErrStorageRead = errors.New("storage read failed")

	_ storage.Reader = (*stateView)(nil)
)

// Ctx is the host environment of a validity predicate run. It is owned by a
// single predicate and must not be shared between goroutines.
type Ctx struct {
	ctx         context.Context
	address     address.Address
	pre         database.KeyValueReader
	post        database.KeyValueReader
	tx          *Tx
	meter       gas.VpMeter
	keysChanged storage.KeySet
	verifiers   set.Set[address.Address]
}

// NewCtx returns the environment of the predicate of [addr]. [pre] is the
// committed state before [tx] and [post] is the state including the tx's
// write log.
func NewCtx(
	ctx context.Context,
	addr address.Address,
	pre database.KeyValueReader,
	post database.KeyValueReader,
	tx *Tx,
	meter gas.VpMeter,
	keysChanged storage.KeySet,
	verifiers set.Set[address.Address],
) *Ctx {
	return &Ctx{
		ctx:         ctx,
		address:     addr,
		pre:         pre,
		post:        post,
		tx:          tx,
		meter:       meter,
		keysChanged: keysChanged,
		verifiers:   verifiers,
	}
}

func (c *Ctx) Context() context.Context { return c.ctx }

func (c *Ctx) Address() address.Address { return c.address }

func (c *Ctx) Tx() *Tx { return c.tx }

func (c *Ctx) KeysChanged() storage.KeySet { return c.keysChanged }

func (c *Ctx) Verifiers() set.Set[address.Address] { return c.verifiers }

// GasMeter returns a copy of the predicate's meter
func (c *Ctx) GasMeter() gas.VpMeter { return c.meter }

// Charge consumes [gas] from the predicate's meter
func (c *Ctx) Charge(gas uint64) error {
	return c.meter.Consume(gas)
}

// ChargeBytes consumes the cost of [bytesLen] bytes with [charge], e.g.
// [gas.AddCompilingGas]
func (c *Ctx) ChargeBytes(charge func(gas.Meter, uint64) error, bytesLen uint64) error {
	return charge(&c.meter, bytesLen)
}

// ReadPre reads [key] from the state before the transaction
func (c *Ctx) ReadPre(key storage.Key) ([]byte, error) {
	return c.read(c.pre, key)
}

// ReadPost reads [key] from the state after the transaction
func (c *Ctx) ReadPost(key storage.Key) ([]byte, error) {
	return c.read(c.post, key)
}

// Pre returns a reader of the state before the transaction
func (c *Ctx) Pre() storage.Reader { return &stateView{ctx: c, db: c.pre} }

// Post returns a reader of the state after the transaction
func (c *Ctx) Post() storage.Reader { return &stateView{ctx: c, db: c.post} }

// read returns nil for a missing key. Every read is charged against the
// predicate's meter.
func (c *Ctx) read(db database.KeyValueReader, key storage.Key) ([]byte, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	value, err := db.Get(key.Bytes())
	switch {
	case err == database.ErrNotFound:
		value = nil
	case err != nil:
		return nil, fmt.Errorf("%w: %q: %s", ErrStorageRead, key, err)
	case value == nil:
		value = []byte{}
	}

	bytesLen, err := gas.BytesLen(value)
	if err != nil {
		return nil, err
	}
	if err := gas.AddStorageAccessGas(&c.meter, bytesLen); err != nil {
		return nil, err
	}
	return value, nil
}

type stateView struct {
	ctx *Ctx
	db  database.KeyValueReader
}

func (s *stateView) Read(key storage.Key) ([]byte, error) {
	return s.ctx.read(s.db, key)
}
