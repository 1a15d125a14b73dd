// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gas

import (
	"github.com/ava-labs/avalanchego/utils/math"
)

// BlockMeter tracks the gas consumed by all the transactions of a block
type BlockMeter struct {
	limit    uint64
	consumed uint64
}

func NewBlockMeter(limit uint64) *BlockMeter {
	return &BlockMeter{limit: limit}
}

// FinalizeTransaction adds the gas consumed by [txMeter] to the block. Like
// the transaction meters, the total is updated even if the block limit is
// exceeded.
func (b *BlockMeter) FinalizeTransaction(txMeter *TxMeter) error {
	consumed, err := math.Add64(b.consumed, txMeter.TxGas())
	if err != nil {
		return ErrGasOverflow
	}
	b.consumed = consumed

	if b.consumed > b.limit {
		return ErrBlockGasExceeded
	}
	return nil
}

func (b *BlockMeter) Consumed() uint64 { return b.consumed }

func (b *BlockMeter) Limit() uint64 { return b.limit }
