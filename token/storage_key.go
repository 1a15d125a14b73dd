// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/storage"
)

const (
	balanceSegment    = "balance"
	mintedSegment     = "minted"
	minterSegment     = "minter"
	parametersSegment = "parameters"
)

var multitokenSegment = address.Multitoken.String()

// BalanceKey returns the key of [owner]'s balance of [token]:
// #Multitoken/<token>/balance/<owner>
func BalanceKey(token, owner address.Address) storage.Key {
	return storage.Join(multitokenSegment, token.String(), balanceSegment, owner.String())
}

// MintedBalanceKey returns the key of the total minted supply of [token]:
// #Multitoken/<token>/balance/minted
func MintedBalanceKey(token address.Address) storage.Key {
	return storage.Join(multitokenSegment, token.String(), balanceSegment, mintedSegment)
}

// MinterKey returns the key of the address allowed to mint [token]:
// #Multitoken/<token>/minter
func MinterKey(token address.Address) storage.Key {
	return storage.Join(multitokenSegment, token.String(), minterSegment)
}

// ParameterKey returns the key of the [name] parameter of [token]:
// #Multitoken/<token>/parameters/<name>
func ParameterKey(token address.Address, name string) storage.Key {
	return storage.Join(multitokenSegment, token.String(), parametersSegment, name)
}

// IsMultitokenKey returns true if [key] lives under the multitoken sub-space
func IsMultitokenKey(key storage.Key) bool {
	return key.FirstSegment() == multitokenSegment
}

// tokenSegments splits a multitoken key into its token and the remaining
// segments.
func tokenSegments(key storage.Key) (address.Address, []string, bool) {
	segments := key.Segments()
	if len(segments) < 2 || segments[0] != multitokenSegment {
		return address.Address{}, nil, false
	}
	token, err := address.Parse(segments[1])
	if err != nil {
		return address.Address{}, nil, false
	}
	return token, segments[2:], true
}

// IsAnyTokenBalanceKey returns the token and owner of a balance key
func IsAnyTokenBalanceKey(key storage.Key) (address.Address, address.Address, bool) {
	token, rest, ok := tokenSegments(key)
	if !ok || len(rest) != 2 || rest[0] != balanceSegment {
		return address.Address{}, address.Address{}, false
	}
	owner, err := address.Parse(rest[1])
	if err != nil {
		return address.Address{}, address.Address{}, false
	}
	return token, owner, true
}

// IsAnyMintedBalanceKey returns the token of a minted supply key
func IsAnyMintedBalanceKey(key storage.Key) (address.Address, bool) {
	token, rest, ok := tokenSegments(key)
	if !ok || len(rest) != 2 || rest[0] != balanceSegment || rest[1] != mintedSegment {
		return address.Address{}, false
	}
	return token, true
}

// IsAnyMinterKey returns the token of a minter key
func IsAnyMinterKey(key storage.Key) (address.Address, bool) {
	token, rest, ok := tokenSegments(key)
	if !ok || len(rest) != 1 || rest[0] != minterSegment {
		return address.Address{}, false
	}
	return token, true
}

// IsAnyTokenParameterKey returns the token of a parameter key
func IsAnyTokenParameterKey(key storage.Key) (address.Address, bool) {
	token, rest, ok := tokenSegments(key)
	if !ok || len(rest) != 2 || rest[0] != parametersSegment {
		return address.Address{}, false
	}
	return token, true
}
