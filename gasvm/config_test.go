// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name        string
		configBytes []byte
		expected    func() Config
		expectedErr error
	}{
		{
			name:        "empty",
			configBytes: nil,
			expected:    DefaultConfig,
		},
		{
			name:        "overrides",
			configBytes: []byte(`{"blockGasLimit":5000000,"maxParallelVps":2,"logLevel":"debug"}`),
			expected: func() Config {
				config := DefaultConfig()
				config.BlockGasLimit = 5_000_000
				config.MaxParallelVps = 2
				config.LogLevel = "debug"
				return config
			},
		},
		{
			name:        "zero block gas limit",
			configBytes: []byte(`{"blockGasLimit":0}`),
			expectedErr: errZeroBlockGasLimit,
		},
		{
			name:        "zero parallelism",
			configBytes: []byte(`{"maxParallelVps":0}`),
			expectedErr: errZeroMaxParallelVps,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			config, err := ParseConfig(test.configBytes)
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr != nil {
				return
			}
			require.Equal(test.expected(), config)
		})
	}
}

func TestParseConfigInvalid(t *testing.T) {
	require := require.New(t)

	_, err := ParseConfig([]byte(`{`))
	require.Error(err)

	_, err = ParseConfig([]byte(`{"logLevel":"loud"}`))
	require.Error(err)
}
