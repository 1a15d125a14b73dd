// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

const (
	establishedPrefix = "est:"
	implicitPrefix    = "imp:"
	internalPrefix    = "#"
	ibcTokenName      = "IbcToken"
)

var (
	errUnknownKind     = errors.New("unknown address kind")
	errUnknownInternal = errors.New("unknown internal address")
	errMalformed       = errors.New("malformed address")

	// Native validity predicate accounts
	PoS          = internal(InternalPoS)
	PosSlashPool = internal(InternalPosSlashPool)
	Parameters   = internal(InternalParameters)
	Governance   = internal(InternalGovernance)
	Ibc          = internal(InternalIbc)
	Multitoken   = internal(InternalMultitoken)
)

type Kind byte

const (
	Established Kind = iota + 1
	Implicit
	Internal
)

type InternalKind byte

const (
	InternalPoS InternalKind = iota + 1
	InternalPosSlashPool
	InternalParameters
	InternalGovernance
	InternalIbc
	InternalIbcToken
	InternalMultitoken
)

var internalNames = map[InternalKind]string{
	InternalPoS:          "PoS",
	InternalPosSlashPool: "PosSlashPool",
	InternalParameters:   "Parameters",
	InternalGovernance:   "Governance",
	InternalIbc:          "Ibc",
	InternalIbcToken:     ibcTokenName,
	InternalMultitoken:   "Multitoken",
}

// Address identifies an account on the ledger. Addresses are comparable and
// can be used as map keys.
type Address struct {
	Kind     Kind         `serialize:"true" json:"kind"`
	Internal InternalKind `serialize:"true" json:"internal"`
	// ID is the account hash for established and implicit addresses and the
	// denomination hash for IBC tokens. It is empty otherwise.
	ID ids.ShortID `serialize:"true" json:"id"`
}

func internal(kind InternalKind) Address {
	return Address{Kind: Internal, Internal: kind}
}

// NewEstablished returns the address of an established account
func NewEstablished(id ids.ShortID) Address {
	return Address{Kind: Established, ID: id}
}

// NewImplicit returns the address of an implicit account
func NewImplicit(id ids.ShortID) Address {
	return Address{Kind: Implicit, ID: id}
}

// IbcToken returns the address of the token bridged over IBC as [denom]
func IbcToken(denom string) Address {
	return Address{
		Kind:     Internal,
		Internal: InternalIbcToken,
		ID:       ids.ShortID(hashing.ComputeHash160Array([]byte(denom))),
	}
}

// IsIbcToken returns true if [a] represents a token bridged over IBC
func (a Address) IsIbcToken() bool {
	return a.Kind == Internal && a.Internal == InternalIbcToken
}

func (a Address) IsInternal() bool { return a.Kind == Internal }

// Verify returns nil iff [a] is well formed
func (a Address) Verify() error {
	switch a.Kind {
	case Established, Implicit:
		if a.Internal != 0 {
			return errMalformed
		}
		return nil
	case Internal:
		if _, ok := internalNames[a.Internal]; !ok {
			return errUnknownInternal
		}
		if a.Internal != InternalIbcToken && a.ID != ids.ShortEmpty {
			return errMalformed
		}
		return nil
	default:
		return errUnknownKind
	}
}

func (a Address) String() string {
	switch a.Kind {
	case Established:
		return establishedPrefix + a.ID.String()
	case Implicit:
		return implicitPrefix + a.ID.String()
	case Internal:
		name := internalPrefix + internalNames[a.Internal]
		if a.Internal == InternalIbcToken {
			return name + ":" + a.ID.String()
		}
		return name
	default:
		return fmt.Sprintf("unknown(%d)", a.Kind)
	}
}

// Less orders addresses by their string representation
func (a Address) Less(other Address) bool {
	return a.String() < other.String()
}

// Parse is the inverse of [Address.String]
func Parse(s string) (Address, error) {
	switch {
	case strings.HasPrefix(s, establishedPrefix):
		id, err := ids.ShortFromString(s[len(establishedPrefix):])
		if err != nil {
			return Address{}, fmt.Errorf("%w: %s", errMalformed, err)
		}
		return NewEstablished(id), nil
	case strings.HasPrefix(s, implicitPrefix):
		id, err := ids.ShortFromString(s[len(implicitPrefix):])
		if err != nil {
			return Address{}, fmt.Errorf("%w: %s", errMalformed, err)
		}
		return NewImplicit(id), nil
	case strings.HasPrefix(s, internalPrefix):
		name := s[len(internalPrefix):]
		if strings.HasPrefix(name, ibcTokenName+":") {
			id, err := ids.ShortFromString(name[len(ibcTokenName)+1:])
			if err != nil {
				return Address{}, fmt.Errorf("%w: %s", errMalformed, err)
			}
			return Address{Kind: Internal, Internal: InternalIbcToken, ID: id}, nil
		}
		for kind, kindName := range internalNames {
			if kind != InternalIbcToken && kindName == name {
				return internal(kind), nil
			}
		}
		return Address{}, fmt.Errorf("%w: %q", errUnknownInternal, s)
	default:
		return Address{}, fmt.Errorf("%w: %q", errUnknownKind, s)
	}
}
