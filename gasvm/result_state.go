// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"errors"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

var (
	errResultWrongVersion = errors.New("wrong version")

	_ ResultState = (*resultState)(nil)
)

// ResultState stores the outcome of every executed transaction, keyed by
// tx ID.
type ResultState interface {
	GetTxResult(txID ids.ID) (*TxResult, error)
	PutTxResult(result *TxResult) error

	ClearResultCache()
}

type resultState struct {
	resultCache cache.Cacher[ids.ID, *TxResult]
	resultDB    database.Database
}

func NewResultState(db database.Database, cacheSize int) ResultState {
	return &resultState{
		resultCache: &cache.LRU[ids.ID, *TxResult]{Size: cacheSize},
		resultDB:    db,
	}
}

func (s *resultState) GetTxResult(txID ids.ID) (*TxResult, error) {
	if result, ok := s.resultCache.Get(txID); ok {
		return result, nil
	}

	resultBytes, err := s.resultDB.Get(txID[:])
	if err != nil {
		return nil, err
	}

	result := &TxResult{}
	parsedVersion, err := Codec.Unmarshal(resultBytes, result)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errResultWrongVersion
	}

	s.resultCache.Put(txID, result)
	return result, nil
}

func (s *resultState) PutTxResult(result *TxResult) error {
	bytes, err := Codec.Marshal(CodecVersion, result)
	if err != nil {
		return err
	}

	s.resultCache.Put(result.TxID, result)
	return s.resultDB.Put(result.TxID[:], bytes)
}

func (s *resultState) ClearResultCache() {
	s.resultCache.Flush()
}
