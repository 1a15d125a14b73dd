// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/binary"
	"strconv"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/storage"
)

const (
	proposalSegment         = "proposal"
	pendingExecutionSegment = "pending_execution"
)

// ProposalIDBytes encodes [id] the way a proposal execution tx carries it
func ProposalIDBytes(id uint64) []byte {
	b := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(b, id)
	return b
}

// PendingExecutionKey is set once proposal [id] has been accepted and is
// waiting for its execution tx:
// #Governance/proposal/<id>/pending_execution
func PendingExecutionKey(id uint64) storage.Key {
	return storage.Join(
		address.Governance.String(),
		proposalSegment,
		strconv.FormatUint(id, 10),
		pendingExecutionSegment,
	)
}

// IsProposalAccepted returns true if [data] is the ID of a proposal that was
// accepted by governance and still awaits execution in [pre].
func IsProposalAccepted(pre storage.Reader, data []byte) (bool, error) {
	if len(data) != wrappers.LongLen {
		return false, nil
	}
	id := binary.BigEndian.Uint64(data)
	value, err := pre.Read(PendingExecutionKey(id))
	if err != nil {
		return false, err
	}
	return value != nil, nil
}
