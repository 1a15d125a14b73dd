// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"fmt"
	"math"
	"net/http"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/gasvm/gas"
)

// StaticService exposes the gas arithmetic of the VM without a chain
type StaticService struct{}

// CreateStaticService ...
func CreateStaticService() *StaticService {
	return &StaticService{}
}

// GasLimitArgs are arguments for RoundGasLimit
type GasLimitArgs struct {
	GasLimit json.Uint64 `json:"gasLimit"`
}

// GasLimitReply is the reply from RoundGasLimit
type GasLimitReply struct {
	GasLimit   json.Uint64 `json:"gasLimit"`
	Multiplier json.Uint64 `json:"multiplier"`
}

// RoundGasLimit rounds [args.GasLimit] up to the gas limit resolution
func (*StaticService) RoundGasLimit(_ *http.Request, args *GasLimitArgs, reply *GasLimitReply) error {
	limit, err := gas.NewLimit(uint64(args.GasLimit))
	if err != nil {
		return err
	}
	reply.GasLimit = json.Uint64(limit.Uint64())
	reply.Multiplier = json.Uint64(limit.Multiplier())
	return nil
}

// FeeArgs are arguments for Fee
type FeeArgs struct {
	GasLimit      json.Uint64 `json:"gasLimit"`
	FeePerGasUnit json.Uint64 `json:"feePerGasUnit"`
}

// FeeReply is the reply from Fee
type FeeReply struct {
	Fee json.Uint64 `json:"fee"`
}

// Fee returns the fee paid upfront for a tx with [args.GasLimit]
func (*StaticService) Fee(_ *http.Request, args *FeeArgs, reply *FeeReply) error {
	limit, err := gas.NewLimit(uint64(args.GasLimit))
	if err != nil {
		return err
	}
	fee, err := limit.Fee(uint64(args.FeePerGasUnit))
	if err != nil {
		return err
	}
	reply.Fee = json.Uint64(fee)
	return nil
}

// RefundArgs are arguments for Refund
type RefundArgs struct {
	GasLimit json.Uint64 `json:"gasLimit"`
	GasUsed  json.Uint64 `json:"gasUsed"`
}

// RefundReply is the reply from Refund
type RefundReply struct {
	Refund json.Uint64 `json:"refund"`
}

// Refund returns the gas refunded to a tx with [args.GasLimit] that used
// [args.GasUsed]
func (*StaticService) Refund(_ *http.Request, args *RefundArgs, reply *RefundReply) error {
	limit, err := gas.NewLimit(uint64(args.GasLimit))
	if err != nil {
		return err
	}
	reply.Refund = json.Uint64(limit.Refund(uint64(args.GasUsed)))
	return nil
}

// MergeVpsGasArgs are arguments for MergeVpsGas
type MergeVpsGasArgs struct {
	// VpsGas are encoded aggregators, as returned by [gas.VpsGas.Bytes]
	VpsGas   []string            `json:"vpsGas"`
	Encoding formatting.Encoding `json:"encoding"`
}

// MergeVpsGasReply is the reply from MergeVpsGas
type MergeVpsGasReply struct {
	VpsGas   string              `json:"vpsGas"`
	Billed   json.Uint64         `json:"billed"`
	Encoding formatting.Encoding `json:"encoding"`
}

// MergeVpsGas merges the aggregators of [args.VpsGas] and returns the merged
// aggregator with the gas it bills
func (*StaticService) MergeVpsGas(_ *http.Request, args *MergeVpsGasArgs, reply *MergeVpsGasReply) error {
	unbounded := gas.NewTxMeter(math.MaxUint64)
	merged := &gas.VpsGas{}
	for i, vpsGasStr := range args.VpsGas {
		b, err := formatting.Decode(args.Encoding, vpsGasStr)
		if err != nil {
			return fmt.Errorf("couldn't decode vps gas %d: %w", i, err)
		}
		vpsGas, err := gas.ParseVpsGas(b)
		if err != nil {
			return fmt.Errorf("couldn't parse vps gas %d: %w", i, err)
		}
		if err := merged.Merge(vpsGas, unbounded); err != nil {
			return err
		}
	}

	billed, err := merged.CurrentGas()
	if err != nil {
		return err
	}
	b, err := merged.Bytes()
	if err != nil {
		return err
	}
	reply.VpsGas, err = formatting.Encode(args.Encoding, b)
	if err != nil {
		return err
	}
	reply.Billed = json.Uint64(billed)
	reply.Encoding = args.Encoding
	return nil
}
