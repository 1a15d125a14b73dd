// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/vp"
)

var (
	errBlockWrongVersion = errors.New("wrong version")
	errTimestampTooEarly = errors.New("block's timestamp is earlier than its parent's timestamp")
	errTimestampTooLate  = errors.New("block's timestamp is more than 1 hour ahead of local time")
	errWrongHeight       = errors.New("block's height is not its parent's height + 1")
	errWrongParent       = errors.New("block's parent is not the last accepted block")
	errDuplicateTx       = errors.New("duplicate tx in block")
)

// Block is an ordered batch of transactions applied on top of its parent
type Block struct {
	ParentID ids.ID   `serialize:"true" json:"parentID"`
	Hght     uint64   `serialize:"true" json:"height"`
	Tmstmp   int64    `serialize:"true" json:"timestamp"`
	Txs      []*vp.Tx `serialize:"true" json:"txs"`

	id    ids.ID
	bytes []byte
}

// NewBlock returns an initialized block
func NewBlock(parentID ids.ID, height uint64, timestamp time.Time, txs []*vp.Tx) (*Block, error) {
	blk := &Block{
		ParentID: parentID,
		Hght:     height,
		Tmstmp:   timestamp.Unix(),
		Txs:      txs,
	}
	bytes, err := Codec.Marshal(CodecVersion, blk)
	if err != nil {
		return nil, err
	}
	blk.initialize(bytes)
	return blk, blk.initializeTxs()
}

// ParseBlock parses [bytes] into an initialized block
func ParseBlock(bytes []byte) (*Block, error) {
	blk := &Block{}
	parsedVersion, err := Codec.Unmarshal(bytes, blk)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errBlockWrongVersion
	}
	blk.initialize(bytes)
	return blk, blk.initializeTxs()
}

func (b *Block) initialize(bytes []byte) {
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(bytes)
}

func (b *Block) initializeTxs() error {
	for i, tx := range b.Txs {
		if err := tx.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize tx %d: %w", i, err)
		}
	}
	return nil
}

func (b *Block) ID() ids.ID { return b.id }

func (b *Block) Parent() ids.ID { return b.ParentID }

func (b *Block) Height() uint64 { return b.Hght }

func (b *Block) Timestamp() time.Time { return time.Unix(b.Tmstmp, 0) }

func (b *Block) Bytes() []byte { return b.bytes }

// Verify returns nil iff [b] can be applied on top of [parent].
// To be valid, it must be that:
// parent.Timestamp <= b.Timestamp < [local time] + 1 hour
func (b *Block) Verify(parent *Block, now time.Time) error {
	if b.ParentID != parent.ID() {
		return fmt.Errorf("%w: expected %s but got %s", errWrongParent, parent.ID(), b.ParentID)
	}
	if b.Hght != parent.Hght+1 {
		return fmt.Errorf("%w: expected %d but got %d", errWrongHeight, parent.Hght+1, b.Hght)
	}
	if b.Tmstmp < parent.Tmstmp {
		return errTimestampTooEarly
	}
	if b.Tmstmp >= now.Add(time.Hour).Unix() {
		return errTimestampTooLate
	}

	txIDs := set.NewSet[ids.ID](len(b.Txs))
	for _, tx := range b.Txs {
		txID := tx.ID()
		if txIDs.Contains(txID) {
			return fmt.Errorf("%w: %s", errDuplicateTx, txID)
		}
		txIDs.Add(txID)
	}
	return nil
}
