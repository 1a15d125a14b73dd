// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"github.com/ava-labs/avalanchego/ids"
)

// ID is a unique identifier for this VM
var ID = ids.ID{'g', 'a', 's', 'v', 'm'}

// Factory creates VMs with the default runners
type Factory struct{}

func (*Factory) New() (*VM, error) { return &VM{}, nil }
