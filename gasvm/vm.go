// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/rpc/v2"

	log "github.com/inconshreveable/log15"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/ava-labs/avalanchego/version"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

const Name = "gasvm"

var (
	Version = &version.Semantic{
		Major: 0,
		Minor: 1,
		Patch: 0,
	}

	errNotInitialized = errors.New("vm is not initialized")
	errNoTxs          = errors.New("no txs to put in a block")
)

// VM applies blocks of transactions to the ledger. Every transaction is
// metered and its writes are checked by the validity predicates of the
// accounts it touches.
//
// The exported fields can be set before [VM.Initialize] to replace the
// default runners.
type VM struct {
	TxRunner    TxRunner
	VpRunner    VpRunner
	SigVerifier SigVerifier
	NativeVps   map[address.Address]vp.Factory

	Clock mockable.Clock

	config   Config
	state    State
	executor *executor
	metrics  *metrics

	// lock serializes block application
	lock         sync.Mutex
	lastAccepted *Block
}

// Initialize this vm
// [db] is this vm's database
// The ledger of a new database is filled with [genesisBytes]
// [configBytes] is the JSON encoded [Config]
func (vm *VM) Initialize(
	_ context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
	registerer prometheus.Registerer,
) error {
	log.Info("initializing gas VM", "version", Version)

	config, err := ParseConfig(configBytes)
	if err != nil {
		log.Error("error parsing config", "error", err)
		return err
	}
	vm.config = config

	if vm.TxRunner == nil {
		vm.TxRunner = WriteSetRunner{}
	}
	if vm.VpRunner == nil {
		vm.VpRunner = UserVpRunner{}
	}
	if vm.NativeVps == nil {
		vm.NativeVps = DefaultNativeVps()
	}

	vm.metrics, err = newMetrics(Name, registerer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	txCode, err := newCodeCache(Name+"_tx_code_cache", config.CodeCacheSize, vm.TxRunner, registerer)
	if err != nil {
		return err
	}
	vpCode, err := newCodeCache(Name+"_vp_code_cache", config.CodeCacheSize, vm.VpRunner, registerer)
	if err != nil {
		return err
	}
	vm.executor = &executor{
		maxParallelVps: config.MaxParallelVps,
		txRunner:       vm.TxRunner,
		vpRunner:       vm.VpRunner,
		sigVerifier:    vm.SigVerifier,
		nativeVps:      vm.NativeVps,
		txCode:         txCode,
		vpCode:         vpCode,
		metrics:        vm.metrics,
	}

	vm.state = NewState(db, config)
	if err := vm.initGenesis(genesisBytes); err != nil {
		return err
	}

	lastAcceptedID, err := vm.state.GetLastAccepted()
	if err != nil {
		return fmt.Errorf("failed to get last accepted block: %w", err)
	}
	vm.lastAccepted, err = vm.state.GetBlock(lastAcceptedID)
	if err != nil {
		return fmt.Errorf("failed to get last accepted block %s: %w", lastAcceptedID, err)
	}
	log.Info("initialized gas VM",
		"lastAccepted", lastAcceptedID,
		"height", vm.lastAccepted.Height(),
		"blockGasLimit", config.BlockGasLimit,
		"maxParallelVps", config.MaxParallelVps,
	)
	return nil
}

// initGenesis fills the ledger and accepts the genesis block if the database
// is empty
func (vm *VM) initGenesis(genesisBytes []byte) error {
	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	genesis, err := ParseGenesis(genesisBytes)
	if err != nil {
		log.Error("error parsing genesis", "error", err)
		return err
	}
	if err := genesis.Apply(vm.state.Ledger()); err != nil {
		vm.state.Abort()
		return fmt.Errorf("failed to apply genesis: %w", err)
	}

	// Timestamp of genesis block is 0. It has no parent.
	genesisBlock, err := NewBlock(ids.Empty, 0, time.Unix(0, 0), nil)
	if err != nil {
		vm.state.Abort()
		return fmt.Errorf("failed to create genesis block: %w", err)
	}
	if err := vm.state.PutBlock(genesisBlock); err != nil {
		vm.state.Abort()
		return err
	}
	if err := vm.state.SetLastAccepted(genesisBlock.ID()); err != nil {
		vm.state.Abort()
		return err
	}
	if err := vm.state.SetInitialized(); err != nil {
		vm.state.Abort()
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}
	if err := vm.state.Commit(); err != nil {
		log.Error("error while committing db", "error", err)
		return err
	}
	log.Info("accepted genesis block", "blkID", genesisBlock.ID(), "balances", len(genesis.Balances))
	return nil
}

// BuildBlock returns a block holding [txs] on top of the last accepted block
func (vm *VM) BuildBlock(txs []*vp.Tx) (*Block, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.buildBlock(txs)
}

func (vm *VM) buildBlock(txs []*vp.Tx) (*Block, error) {
	if vm.lastAccepted == nil {
		return nil, errNotInitialized
	}
	if len(txs) == 0 {
		return nil, errNoTxs
	}

	timestamp := vm.Clock.Time()
	if parentTime := vm.lastAccepted.Timestamp(); timestamp.Before(parentTime) {
		timestamp = parentTime
	}
	return NewBlock(vm.lastAccepted.ID(), vm.lastAccepted.Height()+1, timestamp, txs)
}

// AcceptBlock verifies [blk], applies its txs and makes it the last accepted
// block. Nothing is persisted if an error is returned.
func (vm *VM) AcceptBlock(ctx context.Context, blk *Block) ([]*TxResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.acceptBlock(ctx, blk)
}

// IssueTxs builds a block holding [txs] and accepts it
func (vm *VM) IssueTxs(ctx context.Context, txs []*vp.Tx) (*Block, []*TxResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	blk, err := vm.buildBlock(txs)
	if err != nil {
		return nil, nil, err
	}
	results, err := vm.acceptBlock(ctx, blk)
	if err != nil {
		return nil, nil, err
	}
	return blk, results, nil
}

func (vm *VM) acceptBlock(ctx context.Context, blk *Block) ([]*TxResult, error) {
	if vm.lastAccepted == nil {
		return nil, errNotInitialized
	}
	if err := blk.Verify(vm.lastAccepted, vm.Clock.Time()); err != nil {
		return nil, err
	}

	results, blockGas, err := vm.applyBlock(ctx, blk)
	if err != nil {
		log.Debug("rejected block", "blkID", blk.ID(), "error", err)
		return nil, err
	}

	for _, result := range results {
		if err := vm.state.PutTxResult(result); err != nil {
			vm.state.Abort()
			return nil, err
		}
	}
	if err := vm.state.PutBlock(blk); err != nil {
		vm.state.Abort()
		return nil, err
	}
	if err := vm.state.SetLastAccepted(blk.ID()); err != nil {
		vm.state.Abort()
		return nil, err
	}
	if err := vm.state.Commit(); err != nil {
		vm.state.Abort()
		return nil, err
	}
	vm.lastAccepted = blk

	for _, result := range results {
		vm.metrics.observeTx(result)
	}
	vm.metrics.blocks.Inc()
	vm.metrics.blockGas.Set(float64(blockGas))
	log.Info("accepted block",
		"blkID", blk.ID(),
		"height", blk.Height(),
		"txs", len(blk.Txs),
		"gas", blockGas,
	)
	return results, nil
}

// applyBlock runs the txs of [blk] in order on a staging copy of the ledger.
// The staging copy is written to the state only if the block stays within
// the block gas limit.
func (vm *VM) applyBlock(ctx context.Context, blk *Block) ([]*TxResult, uint64, error) {
	blockDB := versiondb.New(vm.state.Ledger())
	blockMeter := gas.NewBlockMeter(vm.config.BlockGasLimit)
	results := make([]*TxResult, 0, len(blk.Txs))
	for _, tx := range blk.Txs {
		if err := ctx.Err(); err != nil {
			blockDB.Abort()
			return nil, 0, err
		}

		result, txMeter, err := vm.executor.applyTx(ctx, blockDB, tx)
		if err != nil {
			blockDB.Abort()
			return nil, 0, fmt.Errorf("failed to apply tx %s: %w", tx.ID(), err)
		}
		if err := blockMeter.FinalizeTransaction(txMeter); err != nil {
			blockDB.Abort()
			return nil, 0, fmt.Errorf("tx %s: %w", tx.ID(), err)
		}
		log.Debug("applied tx",
			"txID", tx.ID(),
			"status", result.Status,
			"gasUsed", result.GasUsed,
			"reason", result.Reason,
		)
		results = append(results, result)
	}
	if err := blockDB.Commit(); err != nil {
		vm.state.Abort()
		return nil, 0, err
	}
	return results, blockMeter.Consumed(), nil
}

// LastAccepted returns the ID of the last accepted block
func (vm *VM) LastAccepted() (ids.ID, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.lastAccepted == nil {
		return ids.Empty, errNotInitialized
	}
	return vm.lastAccepted.ID(), nil
}

func (vm *VM) GetBlock(blkID ids.ID) (*Block, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.state.GetBlock(blkID)
}

func (vm *VM) GetTxResult(txID ids.ID) (*TxResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.state.GetTxResult(txID)
}

// GetValue reads [key] from the ledger. It returns nil if the key doesn't
// exist.
func (vm *VM) GetValue(key storage.Key) ([]byte, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	value, err := vm.state.Ledger().Get(key.Bytes())
	if err == database.ErrNotFound {
		return nil, nil
	}
	return value, err
}

// Shutdown closes the state of this vm
func (vm *VM) Shutdown() error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.state == nil {
		return nil
	}
	return vm.state.Close()
}

// Version returns this VM's version
func (*VM) Version() string {
	return Version.String()
}

// CreateHandlers returns a map where:
// Keys: The path extension for this VM's API (empty in this case)
// Values: The handler for the API
func (vm *VM) CreateHandlers() (map[string]*common.HTTPHandler, error) {
	handler, err := newHandler(Name, &Service{vm: vm})
	return map[string]*common.HTTPHandler{
		"": handler,
	}, err
}

// CreateStaticHandlers returns a map where:
// Keys: The path extension for this VM's static API
// Values: The handler for that static API
func (*VM) CreateStaticHandlers() (map[string]*common.HTTPHandler, error) {
	handler, err := newHandler(Name, CreateStaticService())
	return map[string]*common.HTTPHandler{
		"": handler,
	}, err
}

func newHandler(name string, service interface{}) (*common.HTTPHandler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return &common.HTTPHandler{LockOptions: common.NoLock, Handler: server}, server.RegisterService(service, name)
}
