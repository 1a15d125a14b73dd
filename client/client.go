// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/gasvm"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

// Client defines gasvm client operations.
type Client interface {
	// IssueTxs puts [txs] in a new block and returns the outcome of each tx
	IssueTxs(ctx context.Context, txs []*vp.Tx) (ids.ID, []*gasvm.TxResult, error)

	// GetTxResult fetches the outcome of an accepted tx
	GetTxResult(ctx context.Context, txID ids.ID) (*gasvm.TxResult, error)

	// GetValue fetches the value of [key] in the ledger. [ok] is false if the
	// key doesn't exist.
	GetValue(ctx context.Context, key storage.Key) (value []byte, ok bool, err error)
}

// StaticClient defines the operations of the gas arithmetic API
type StaticClient interface {
	// RoundGasLimit returns [gasLimit] rounded up to the gas limit resolution
	RoundGasLimit(ctx context.Context, gasLimit uint64) (uint64, error)

	// Fee returns the fee paid upfront for a tx with [gasLimit]
	Fee(ctx context.Context, gasLimit uint64, feePerGasUnit uint64) (uint64, error)

	// Refund returns the gas refunded to a tx with [gasLimit] that used
	// [gasUsed]
	Refund(ctx context.Context, gasLimit uint64, gasUsed uint64) (uint64, error)

	// MergeVpsGas merges [vpsGas] and returns the billed gas
	MergeVpsGas(ctx context.Context, vpsGas []*gas.VpsGas) (*gas.VpsGas, uint64, error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri)
	return &client{req: req}
}

// NewStatic creates a new client of the static API
func NewStatic(uri string) StaticClient {
	req := rpc.NewEndpointRequester(uri)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) IssueTxs(ctx context.Context, txs []*vp.Tx) (ids.ID, []*gasvm.TxResult, error) {
	args := &gasvm.IssueTxsArgs{
		Txs:      make([]string, len(txs)),
		Encoding: formatting.Hex,
	}
	for i, tx := range txs {
		txStr, err := formatting.Encode(formatting.Hex, tx.Bytes())
		if err != nil {
			return ids.Empty, nil, err
		}
		args.Txs[i] = txStr
	}

	resp := new(gasvm.IssueTxsReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.issueTxs",
		args,
		resp,
	)
	if err != nil {
		return ids.Empty, nil, err
	}
	return resp.BlockID, resp.Results, nil
}

func (cli *client) GetTxResult(ctx context.Context, txID ids.ID) (*gasvm.TxResult, error) {
	resp := new(gasvm.GetTxResultReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.getTxResult",
		&gasvm.GetTxResultArgs{TxID: txID},
		resp,
	)
	return resp.Result, err
}

func (cli *client) GetValue(ctx context.Context, key storage.Key) ([]byte, bool, error) {
	resp := new(gasvm.GetValueReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.getValue",
		&gasvm.GetValueArgs{Key: key.String(), Encoding: formatting.Hex},
		resp,
	)
	if err != nil || !resp.Exists {
		return nil, false, err
	}
	value, err := formatting.Decode(formatting.Hex, resp.Value)
	return value, err == nil, err
}

func (cli *client) RoundGasLimit(ctx context.Context, gasLimit uint64) (uint64, error) {
	resp := new(gasvm.GasLimitReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.roundGasLimit",
		&gasvm.GasLimitArgs{GasLimit: json.Uint64(gasLimit)},
		resp,
	)
	return uint64(resp.GasLimit), err
}

func (cli *client) Fee(ctx context.Context, gasLimit uint64, feePerGasUnit uint64) (uint64, error) {
	resp := new(gasvm.FeeReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.fee",
		&gasvm.FeeArgs{
			GasLimit:      json.Uint64(gasLimit),
			FeePerGasUnit: json.Uint64(feePerGasUnit),
		},
		resp,
	)
	return uint64(resp.Fee), err
}

func (cli *client) Refund(ctx context.Context, gasLimit uint64, gasUsed uint64) (uint64, error) {
	resp := new(gasvm.RefundReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.refund",
		&gasvm.RefundArgs{
			GasLimit: json.Uint64(gasLimit),
			GasUsed:  json.Uint64(gasUsed),
		},
		resp,
	)
	return uint64(resp.Refund), err
}

func (cli *client) MergeVpsGas(ctx context.Context, vpsGas []*gas.VpsGas) (*gas.VpsGas, uint64, error) {
	args := &gasvm.MergeVpsGasArgs{
		VpsGas:   make([]string, len(vpsGas)),
		Encoding: formatting.Hex,
	}
	for i, v := range vpsGas {
		b, err := v.Bytes()
		if err != nil {
			return nil, 0, err
		}
		args.VpsGas[i], err = formatting.Encode(formatting.Hex, b)
		if err != nil {
			return nil, 0, err
		}
	}

	resp := new(gasvm.MergeVpsGasReply)
	err := cli.req.SendRequest(ctx,
		"gasvm.mergeVpsGas",
		args,
		resp,
	)
	if err != nil {
		return nil, 0, err
	}
	b, err := formatting.Decode(resp.Encoding, resp.VpsGas)
	if err != nil {
		return nil, 0, err
	}
	merged, err := gas.ParseVpsGas(b)
	if err != nil {
		return nil, 0, err
	}
	return merged, uint64(resp.Billed), nil
}
