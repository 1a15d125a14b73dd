// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

var (
	errNoSuchBlock  = errors.New("couldn't get block from database. Does it exist?")
	errNoSuchResult = errors.New("couldn't get tx result from database. Does the tx exist?")
)

// Service is the API service for this VM
type Service struct{ vm *VM }

// IssueTxsArgs are the arguments to IssueTxs
type IssueTxsArgs struct {
	// Txs are the encoded txs to put in the block
	Txs      []string            `json:"txs"`
	Encoding formatting.Encoding `json:"encoding"`
}

// IssueTxsReply is the reply from IssueTxs
type IssueTxsReply struct {
	BlockID ids.ID      `json:"blockID"`
	Height  json.Uint64 `json:"height"`
	Results []*TxResult `json:"results"`
}

// IssueTxs puts [args.Txs] in a new block and accepts it
func (s *Service) IssueTxs(r *http.Request, args *IssueTxsArgs, reply *IssueTxsReply) error {
	txs := make([]*vp.Tx, len(args.Txs))
	for i, txStr := range args.Txs {
		txBytes, err := formatting.Decode(args.Encoding, txStr)
		if err != nil {
			return fmt.Errorf("couldn't decode tx %d: %w", i, err)
		}
		txs[i], err = vp.ParseTx(txBytes)
		if err != nil {
			return fmt.Errorf("couldn't parse tx %d: %w", i, err)
		}
	}

	blk, results, err := s.vm.IssueTxs(r.Context(), txs)
	if err != nil {
		return err
	}
	reply.BlockID = blk.ID()
	reply.Height = json.Uint64(blk.Height())
	reply.Results = results
	return nil
}

// GetBlockArgs are the arguments to GetBlock
type GetBlockArgs struct {
	// ID of the block we're getting.
	// If left blank, gets the latest block
	ID *ids.ID `json:"id"`
}

// GetBlockReply is the reply from GetBlock
type GetBlockReply struct {
	Timestamp json.Uint64 `json:"timestamp"` // Timestamp of block
	Height    json.Uint64 `json:"height"`    // Height of block
	ID        ids.ID      `json:"id"`        // String repr. of ID of block
	ParentID  ids.ID      `json:"parentID"`  // String repr. of ID of block's parent
	TxIDs     []ids.ID    `json:"txIDs"`
}

// GetBlock gets the block whose ID is [args.ID]
// If [args.ID] is empty, get the latest block
func (s *Service) GetBlock(_ *http.Request, args *GetBlockArgs, reply *GetBlockReply) error {
	var (
		id  ids.ID
		err error
	)
	if args.ID == nil {
		id, err = s.vm.LastAccepted()
		if err != nil {
			return err
		}
	} else {
		id = *args.ID
	}

	blk, err := s.vm.GetBlock(id)
	if err != nil {
		return errNoSuchBlock
	}

	reply.Timestamp = json.Uint64(blk.Timestamp().Unix())
	reply.Height = json.Uint64(blk.Height())
	reply.ID = blk.ID()
	reply.ParentID = blk.Parent()
	reply.TxIDs = make([]ids.ID, len(blk.Txs))
	for i, tx := range blk.Txs {
		reply.TxIDs[i] = tx.ID()
	}
	return nil
}

// GetTxResultArgs are the arguments to GetTxResult
type GetTxResultArgs struct {
	TxID ids.ID `json:"txID"`
}

// GetTxResultReply is the reply from GetTxResult
type GetTxResultReply struct {
	Result *TxResult `json:"result"`
}

// GetTxResult returns the outcome of the accepted tx [args.TxID]
func (s *Service) GetTxResult(_ *http.Request, args *GetTxResultArgs, reply *GetTxResultReply) error {
	result, err := s.vm.GetTxResult(args.TxID)
	if err != nil {
		return errNoSuchResult
	}
	reply.Result = result
	return nil
}

// GetValueArgs are the arguments to GetValue
type GetValueArgs struct {
	Key      string              `json:"key"`
	Encoding formatting.Encoding `json:"encoding"`
}

// GetValueReply is the reply from GetValue
type GetValueReply struct {
	Exists   bool                `json:"exists"`
	Value    string              `json:"value"`
	Encoding formatting.Encoding `json:"encoding"`
}

// GetValue returns the value stored at [args.Key] in the ledger
func (s *Service) GetValue(_ *http.Request, args *GetValueArgs, reply *GetValueReply) error {
	value, err := s.vm.GetValue(storage.Key(args.Key))
	if err != nil {
		return err
	}
	reply.Encoding = args.Encoding
	if value == nil {
		return nil
	}
	reply.Exists = true
	reply.Value, err = formatting.Encode(args.Encoding, value)
	return err
}
