// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/inconshreveable/log15"
)

const (
	defaultBlockGasLimit   = 20_000_000_000
	defaultMaxParallelVps  = 16
	defaultCodeCacheSize   = 1024
	defaultResultCacheSize = 8192
	defaultBlockCacheSize  = 512
	defaultLogLevel        = "info"
)

var (
	errZeroBlockGasLimit  = errors.New("block gas limit must be positive")
	errZeroMaxParallelVps = errors.New("max parallel vps must be positive")
)

// Config is the VM configuration passed as config bytes on initialization
type Config struct {
	// BlockGasLimit bounds the sum of the gas of the transactions of a block
	BlockGasLimit uint64 `json:"blockGasLimit"`
	// MaxParallelVps bounds the validity predicates of a transaction that run
	// at the same time
	MaxParallelVps int `json:"maxParallelVps"`
	// CodeCacheSize is the number of validated code hashes kept in memory
	CodeCacheSize   int    `json:"codeCacheSize"`
	ResultCacheSize int    `json:"resultCacheSize"`
	BlockCacheSize  int    `json:"blockCacheSize"`
	LogLevel        string `json:"logLevel"`
}

func DefaultConfig() Config {
	return Config{
		BlockGasLimit:   defaultBlockGasLimit,
		MaxParallelVps:  defaultMaxParallelVps,
		CodeCacheSize:   defaultCodeCacheSize,
		ResultCacheSize: defaultResultCacheSize,
		BlockCacheSize:  defaultBlockCacheSize,
		LogLevel:        defaultLogLevel,
	}
}

// ParseConfig parses [b] on top of the default config. Empty bytes yield the
// default config.
func ParseConfig(b []byte) (Config, error) {
	config := DefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return config, config.Verify()
}

func (c Config) Verify() error {
	if c.BlockGasLimit == 0 {
		return errZeroBlockGasLimit
	}
	if c.MaxParallelVps <= 0 {
		return errZeroMaxParallelVps
	}
	if _, err := log.LvlFromString(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}
