// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
	"github.com/ava-labs/gasvm/vp/ibc"
	"github.com/ava-labs/gasvm/vp/multitoken"
)

var (
	errInvalidSignatures = errors.New("invalid signatures")
	errVpRejected        = errors.New("rejected by validity predicates")
	errVpFailed          = errors.New("validity predicate failed")
)

// DefaultNativeVps returns the native validity predicates of the ledger
func DefaultNativeVps() map[address.Address]vp.Factory {
	return map[address.Address]vp.Factory{
		address.Multitoken: multitoken.New,
		address.Ibc:        ibc.New,
	}
}

type executor struct {
	maxParallelVps int
	txRunner       TxRunner
	vpRunner       VpRunner
	sigVerifier    SigVerifier
	nativeVps      map[address.Address]vp.Factory
	txCode         *codeCache
	vpCode         *codeCache
	metrics        *metrics
}

// vpOutcome is the result of a single validity predicate run
type vpOutcome struct {
	addr     address.Address
	accepted bool
	meter    gas.VpMeter
	err      error
}

// applyTx runs [tx] on top of [db]. The writes of the tx are committed to
// [db] only if every validity predicate accepted them. The returned error is
// only set if [db] itself failed; every other failure is reported in the
// result.
func (e *executor) applyTx(ctx context.Context, db database.Database, tx *vp.Tx) (*TxResult, *gas.TxMeter, error) {
	result := &TxResult{TxID: tx.ID()}

	limit, err := gas.NewLimit(tx.GasLimit)
	if err != nil {
		result.Status = Failed
		result.Reason = err.Error()
		return result, gas.NewTxMeter(0), nil
	}

	txMeter := gas.NewTxMeter(limit.Uint64())
	finish := func(status Status, reason error) (*TxResult, *gas.TxMeter, error) {
		result.Status = status
		if reason != nil {
			result.Reason = reason.Error()
		}
		result.GasUsed = txMeter.TxGas()
		result.Refund = limit.Refund(result.GasUsed)
		return result, txMeter, nil
	}

	if err := txMeter.AddTxSizeGas(tx.Bytes()); err != nil {
		return finish(Failed, err)
	}
	if err := gas.AddSigVerificationGas(txMeter, uint64(len(tx.Signatures))); err != nil {
		return finish(Failed, err)
	}
	if e.sigVerifier != nil {
		if err := e.sigVerifier.VerifySignatures(tx); err != nil {
			return finish(Failed, fmt.Errorf("%w: %s", errInvalidSignatures, err))
		}
	}
	chargeTx := func(bytesLen uint64) error {
		return gas.AddCompilingGas(txMeter, bytesLen)
	}
	if err := e.txCode.prepare(chargeTx, tx.Code); err != nil {
		return finish(Failed, err)
	}

	writeLog := storage.NewWriteLog(db)
	env := newTxEnv(ctx, writeLog, txMeter)
	if err := e.txRunner.Run(ctx, tx, env); err != nil {
		writeLog.Abort()
		return finish(Failed, err)
	}

	// The predicates of the verifiers and of every address appearing in a
	// changed key run. Only the verifiers authorized the tx.
	keysChanged := writeLog.KeysChanged()
	verifiers := env.Verifiers()
	triggered := set.NewSet[address.Address](verifiers.Len())
	triggered.Union(verifiers)
	for _, key := range keysChanged.List() {
		for _, addr := range key.Addresses() {
			triggered.Add(addr)
		}
	}

	outcomes, err := e.runVps(ctx, tx, writeLog, txMeter, keysChanged, verifiers, triggered)
	if err != nil {
		writeLog.Abort()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		// The gas of the predicates and the failure that cancelled the others
		// depend on scheduling, so the whole budget is billed and only the
		// failure itself is recorded.
		log.Debug("validity predicates failed", "txID", tx.ID(), "error", err)
		_ = txMeter.Consume(txMeter.Remaining())
		return finish(Failed, errVpFailed)
	}

	var rejected []string
	for _, outcome := range outcomes {
		if outcome.accepted {
			result.AcceptedVps = append(result.AcceptedVps, outcome.addr.String())
		} else {
			rejected = append(rejected, outcome.addr.String())
		}
	}
	result.RejectedVps = rejected

	vpsGas, err := foldVpsGas(outcomes, txMeter)
	if err != nil {
		writeLog.Abort()
		return finish(Failed, err)
	}
	result.VpsGas, err = vpsGas.CurrentGas()
	if err != nil {
		writeLog.Abort()
		return finish(Failed, err)
	}
	if err := txMeter.AddVpsGas(vpsGas); err != nil {
		writeLog.Abort()
		return finish(Failed, err)
	}

	if len(rejected) > 0 {
		writeLog.Abort()
		return finish(Rejected, fmt.Errorf("%w: %s", errVpRejected, strings.Join(rejected, ", ")))
	}
	if err := writeLog.Commit(); err != nil {
		return nil, nil, err
	}
	return finish(Applied, nil)
}

// runVps runs the validity predicate of every address in [triggered]. At most
// [e.maxParallelVps] predicates run at the same time. Each predicate gets its
// own meter and its own slot in the returned outcomes, which are ordered by
// address.
func (e *executor) runVps(
	ctx context.Context,
	tx *vp.Tx,
	writeLog *storage.WriteLog,
	txMeter *gas.TxMeter,
	keysChanged storage.KeySet,
	verifiers set.Set[address.Address],
	triggered set.Set[address.Address],
) ([]vpOutcome, error) {
	addrs := triggered.List()
	utils.Sort(addrs)

	outcomes := make([]vpOutcome, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallelVps)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			keys := keysChanged.Filter(func(key storage.Key) bool {
				return key.ContainsAddress(addr)
			})
			vpCtx := vp.NewCtx(gctx, addr, writeLog.Pre(), writeLog, tx, gas.NewVpMeter(txMeter), keys, verifiers)
			accepted, err := e.runVp(vpCtx, keys)

			e.metrics.vpsRun.Inc()
			switch {
			case err != nil:
				e.metrics.vpErrors.Inc()
			case !accepted:
				e.metrics.vpsRejected.Inc()
			}

			outcomes[i] = vpOutcome{
				addr:     addr,
				accepted: accepted,
				meter:    vpCtx.GasMeter(),
				err:      err,
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		// Siblings cancelled by the first failure report the cancellation, so
		// the first real failure in address order is reported.
		for _, outcome := range outcomes {
			if outcome.err != nil && !errors.Is(outcome.err, context.Canceled) {
				return nil, fmt.Errorf("%w: %s: %s", errVpFailed, outcome.addr, outcome.err)
			}
		}
		return nil, fmt.Errorf("%w: %s", errVpFailed, err)
	}
	return outcomes, nil
}

func (e *executor) runVp(vpCtx *vp.Ctx, keysChanged storage.KeySet) (bool, error) {
	addr := vpCtx.Address()
	if factory, ok := e.nativeVps[addr]; ok {
		return factory(vpCtx).ValidateTx(vpCtx.Tx(), keysChanged, vpCtx.Verifiers())
	}
	if addr.IsIbcToken() {
		// the balances of IBC tokens are guarded by the multitoken predicate
		return true, nil
	}
	if addr.IsInternal() {
		// internal accounts without a native predicate can't be changed
		return false, nil
	}

	code, err := vpCtx.ReadPre(ValidityPredicateKey(addr))
	if err != nil {
		return false, err
	}
	chargeVp := func(bytesLen uint64) error {
		return vpCtx.ChargeBytes(gas.AddCompilingGas, bytesLen)
	}
	if err := e.vpCode.prepare(chargeVp, code); err != nil {
		return false, err
	}
	return e.vpRunner.Run(vpCtx, code)
}

// foldVpsGas merges the gas of [outcomes] in order. Exceeding the tx gas
// limit is not reported here: the full total is charged to the tx meter
// afterwards.
func foldVpsGas(outcomes []vpOutcome, txMeter *gas.TxMeter) (*gas.VpsGas, error) {
	vpsGas := &gas.VpsGas{}
	for _, outcome := range outcomes {
		single := &gas.VpsGas{}
		if err := single.Set(outcome.meter); err != nil && !errors.Is(err, gas.ErrTxGasExceeded) {
			return nil, err
		}
		if err := vpsGas.Merge(single, txMeter); err != nil && !errors.Is(err, gas.ErrTxGasExceeded) {
			return nil, err
		}
	}
	return vpsGas, nil
}
