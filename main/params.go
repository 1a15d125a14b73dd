// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/gasvm/gasvm"
)

const (
	envPrefix = "gasvm"

	versionKey         = "version"
	configFileKey      = "config-file"
	httpHostKey        = "http-host"
	httpPortKey        = "http-port"
	dbDirKey           = "db-dir"
	genesisFileKey     = "genesis-file"
	blockGasLimitKey   = "block-gas-limit"
	maxParallelVpsKey  = "max-parallel-vps"
	codeCacheSizeKey   = "code-cache-size"
	resultCacheSizeKey = "result-cache-size"
	blockCacheSizeKey  = "block-cache-size"
	logLevelKey        = "log-level"
)

// params are the settings of the binary
type params struct {
	version     bool
	httpHost    string
	httpPort    uint16
	dbDir       string
	genesisFile string
	config      gasvm.Config
}

func buildFlagSet() *flag.FlagSet {
	defaults := gasvm.DefaultConfig()
	fs := flag.NewFlagSet(gasvm.Name, flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints version and quit")
	fs.String(configFileKey, "", "Config file to read the flags from")
	fs.String(httpHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint(httpPortKey, 9650, "Port of the HTTP server")
	fs.String(dbDirKey, "", "Database directory. The ledger is kept in memory if empty")
	fs.String(genesisFileKey, "", "Genesis file. The ledger starts empty if unset")
	fs.Uint64(blockGasLimitKey, defaults.BlockGasLimit, "Maximum gas consumed by the txs of a block")
	fs.Int(maxParallelVpsKey, defaults.MaxParallelVps, "Maximum number of validity predicates of a tx run at the same time")
	fs.Int(codeCacheSizeKey, defaults.CodeCacheSize, "Number of validated code hashes to cache")
	fs.Int(resultCacheSizeKey, defaults.ResultCacheSize, "Number of tx results to cache")
	fs.Int(blockCacheSizeKey, defaults.BlockCacheSize, "Number of blocks to cache")
	fs.String(logLevelKey, defaults.LogLevel, "Log level (crit, error, warn, info, debug)")

	return fs
}

// getViper returns the viper environment for the binary
func getViper(args []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet(gasvm.Name, pflag.ContinueOnError)
	fs.AddGoFlagSet(buildFlagSet())
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(configFileKey); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %q: %w", configFile, err)
		}
	}
	return v, nil
}

func getParams(args []string) (*params, error) {
	v, err := getViper(args)
	if err != nil {
		return nil, err
	}

	port := v.GetUint(httpPortKey)
	if port > 1<<16-1 {
		return nil, fmt.Errorf("invalid http port %d", port)
	}
	p := &params{
		version:     v.GetBool(versionKey),
		httpHost:    v.GetString(httpHostKey),
		httpPort:    uint16(port),
		dbDir:       v.GetString(dbDirKey),
		genesisFile: v.GetString(genesisFileKey),
		config: gasvm.Config{
			BlockGasLimit:   v.GetUint64(blockGasLimitKey),
			MaxParallelVps:  v.GetInt(maxParallelVpsKey),
			CodeCacheSize:   v.GetInt(codeCacheSizeKey),
			ResultCacheSize: v.GetInt(resultCacheSizeKey),
			BlockCacheSize:  v.GetInt(blockCacheSizeKey),
			LogLevel:        v.GetString(logLevelKey),
		},
	}
	return p, p.config.Verify()
}

// genesisBytes returns the content of the genesis file, if any
func (p *params) genesisBytes() ([]byte, error) {
	if p.genesisFile == "" {
		return nil, nil
	}
	return os.ReadFile(p.genesisFile)
}

func (p *params) configBytes() ([]byte, error) {
	return json.Marshal(p.config)
}
