// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

var _ BlockState = (*blockState)(nil)

type BlockState interface {
	GetBlock(blkID ids.ID) (*Block, error)
	PutBlock(blk *Block) error

	ClearBlockCache()
}

type blockState struct {
	blkCache cache.Cacher[ids.ID, *Block]
	blockDB  database.Database
}

func NewBlockState(db database.Database, cacheSize int) BlockState {
	return &blockState{
		blkCache: &cache.LRU[ids.ID, *Block]{Size: cacheSize},
		blockDB:  db,
	}
}

func (s *blockState) GetBlock(blkID ids.ID) (*Block, error) {
	if blk, ok := s.blkCache.Get(blkID); ok {
		return blk, nil
	}

	blkBytes, err := s.blockDB.Get(blkID[:])
	if err != nil {
		return nil, err
	}

	blk, err := ParseBlock(blkBytes)
	if err != nil {
		return nil, err
	}

	s.blkCache.Put(blkID, blk)
	return blk, nil
}

func (s *blockState) PutBlock(blk *Block) error {
	blkID := blk.ID()
	s.blkCache.Put(blkID, blk)
	return s.blockDB.Put(blkID[:], blk.Bytes())
}

func (s *blockState) ClearBlockCache() {
	s.blkCache.Flush()
}
