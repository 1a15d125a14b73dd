// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

type metrics struct {
	txsApplied  prometheus.Counter
	txsRejected prometheus.Counter
	txsFailed   prometheus.Counter
	blocks      prometheus.Counter

	txGas    prometheus.Histogram
	blockGas prometheus.Gauge

	vpsRun      prometheus.Counter
	vpsRejected prometheus.Counter
	vpErrors    prometheus.Counter
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		txsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_applied",
			Help:      "Number of txs whose writes were committed",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_rejected",
			Help:      "Number of txs rejected by a validity predicate",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_failed",
			Help:      "Number of txs that failed to run to completion",
		}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_accepted",
			Help:      "Number of accepted blocks",
		}),
		txGas: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tx_gas",
			Help:      "Gas billed per tx",
			Buckets:   prometheus.ExponentialBuckets(1_000, 10, 8),
		}),
		blockGas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_block_gas",
			Help:      "Gas consumed by the last accepted block",
		}),
		vpsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vps_run",
			Help:      "Number of validity predicate runs",
		}),
		vpsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vps_rejected",
			Help:      "Number of validity predicate runs that rejected a tx",
		}),
		vpErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vp_errors",
			Help:      "Number of validity predicate runs that returned an error",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.txsApplied),
		registerer.Register(m.txsRejected),
		registerer.Register(m.txsFailed),
		registerer.Register(m.blocks),
		registerer.Register(m.txGas),
		registerer.Register(m.blockGas),
		registerer.Register(m.vpsRun),
		registerer.Register(m.vpsRejected),
		registerer.Register(m.vpErrors),
	)
	return m, errs.Err
}

func (m *metrics) observeTx(result *TxResult) {
	switch result.Status {
	case Applied:
		m.txsApplied.Inc()
	case Rejected:
		m.txsRejected.Inc()
	case Failed:
		m.txsFailed.Inc()
	}
	m.txGas.Observe(float64(result.GasUsed))
}
