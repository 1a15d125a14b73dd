// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

var errUnknownStatus = errors.New("unknown tx status")

// Status is the outcome of a transaction
type Status byte

const (
	// Applied means the writes of the tx were committed
	Applied Status = iota + 1
	// Rejected means a validity predicate refused the writes of the tx
	Rejected
	// Failed means the tx could not be run to completion, e.g. it ran out of
	// gas
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "Applied"
	case Rejected:
		return "Rejected"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch str {
	case "Applied":
		*s = Applied
	case "Rejected":
		*s = Rejected
	case "Failed":
		*s = Failed
	default:
		return fmt.Errorf("%w: %q", errUnknownStatus, str)
	}
	return nil
}

// TxResult is the outcome of a transaction included in an accepted block
type TxResult struct {
	TxID   ids.ID `serialize:"true" json:"txID"`
	Status Status `serialize:"true" json:"status"`
	// GasUsed is the gas billed to the tx, including its validity predicates
	GasUsed uint64 `serialize:"true" json:"gasUsed"`
	// VpsGas is the billed gas of the validity predicates alone
	VpsGas uint64 `serialize:"true" json:"vpsGas"`
	// Refund is the unused part of the last gas limit resolution unit
	Refund      uint64   `serialize:"true" json:"refund"`
	AcceptedVps []string `serialize:"true" json:"acceptedVps"`
	RejectedVps []string `serialize:"true" json:"rejectedVps"`
	Reason      string   `serialize:"true" json:"reason"`
}
