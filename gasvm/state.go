// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	blockStatePrefix     = []byte("block")
	resultStatePrefix    = []byte("result")
	ledgerPrefix         = []byte("ledger")

	_ State = (*state)(nil)
)

// State holds everything the VM persists. Writes are staged in memory until
// [State.Commit].
type State interface {
	SingletonState
	BlockState
	ResultState

	// Ledger returns the database holding the ledger storage keys
	Ledger() database.Database

	Commit() error
	Abort()
	Close() error
}

type state struct {
	SingletonState
	BlockState
	ResultState

	ledgerDB database.Database
	baseDB   *versiondb.Database
}

func NewState(db database.Database, config Config) State {
	baseDB := versiondb.New(db)

	return &state{
		SingletonState: NewSingletonState(prefixdb.New(singletonStatePrefix, baseDB)),
		BlockState:     NewBlockState(prefixdb.New(blockStatePrefix, baseDB), config.BlockCacheSize),
		ResultState:    NewResultState(prefixdb.New(resultStatePrefix, baseDB), config.ResultCacheSize),
		ledgerDB:       prefixdb.New(ledgerPrefix, baseDB),
		baseDB:         baseDB,
	}
}

func (s *state) Ledger() database.Database { return s.ledgerDB }

// Commit commits pending operations to the underlying database
func (s *state) Commit() error {
	return s.baseDB.Commit()
}

// Abort drops pending operations and the entries cached for them
func (s *state) Abort() {
	s.baseDB.Abort()
	s.ClearBlockCache()
	s.ClearResultCache()
}

// Close closes the underlying base database
func (s *state) Close() error {
	return s.baseDB.Close()
}
