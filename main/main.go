// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/gasvm/gasvm"
)

const (
	vmEndpoint        = "/ext/bc/" + gasvm.Name
	staticEndpoint    = "/ext/vm/" + gasvm.Name
	metricsEndpoint   = "/ext/metrics"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 30 * time.Second
)

func main() {
	p, err := getParams(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if p.version {
		fmt.Printf("%s@%s\n", gasvm.Name, gasvm.Version)
		os.Exit(0)
	}

	if err := run(p); err != nil {
		fmt.Printf("gasvm returned an error: %s\n", err)
		os.Exit(1)
	}
}

func run(p *params) error {
	lvl, err := log.LvlFromString(p.config.LogLevel)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StderrHandler))

	registry := prometheus.NewRegistry()
	db, err := openDB(p.dbDir, registry)
	if err != nil {
		return err
	}

	genesisBytes, err := p.genesisBytes()
	if err != nil {
		return fmt.Errorf("couldn't read genesis: %w", err)
	}
	configBytes, err := p.configBytes()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	vm := &gasvm.VM{}
	if err := vm.Initialize(ctx, db, genesisBytes, configBytes, registry); err != nil {
		return err
	}
	defer func() {
		if err := vm.Shutdown(); err != nil {
			log.Error("error shutting down vm", "error", err)
		}
	}()

	mux, err := newMux(vm, registry)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              net.JoinHostPort(p.httpHost, strconv.Itoa(int(p.httpPort))),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("serving gasvm", "address", server.Addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	}
}

// openDB opens the leveldb database in [dbDir], or an in-memory database if
// [dbDir] is empty
func openDB(dbDir string, registry prometheus.Registerer) (database.Database, error) {
	if dbDir == "" {
		log.Warn("no database directory, the ledger is kept in memory")
		return memdb.New(), nil
	}
	return leveldb.New(dbDir, nil, logging.NoLog{}, gasvm.Name+"_db", registry)
}

func newMux(vm *gasvm.VM, gatherer prometheus.Gatherer) (*http.ServeMux, error) {
	handlers, err := vm.CreateHandlers()
	if err != nil {
		return nil, err
	}
	staticHandlers, err := vm.CreateStaticHandlers()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	for extension, handler := range handlers {
		mux.Handle(vmEndpoint+extension, handler.Handler)
	}
	for extension, handler := range staticHandlers {
		mux.Handle(staticEndpoint+extension, handler.Handler)
	}
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux, nil
}
