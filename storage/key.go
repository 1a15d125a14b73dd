// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/gasvm/address"
)

// Separator splits the segments of a key
const Separator = "/"

var errInvalidSegment = errors.New("invalid key segment")

// Key is a path of segments into the ledger storage. The raw key stored in
// the database is the string itself.
type Key string

// Join builds a key out of [segments]. Segments must be non-empty and must not
// contain [Separator]; use [NewKey] for untrusted input.
func Join(segments ...string) Key {
	return Key(strings.Join(segments, Separator))
}

// NewKey builds a key out of [segments], checking every segment
func NewKey(segments ...string) (Key, error) {
	for _, segment := range segments {
		if err := verifySegment(segment); err != nil {
			return "", err
		}
	}
	return Join(segments...), nil
}

// AddressKey returns the key of the root of [addr]'s sub-space
func AddressKey(addr address.Address) Key {
	return Key(addr.String())
}

func verifySegment(segment string) error {
	if segment == "" || strings.Contains(segment, Separator) {
		return fmt.Errorf("%w: %q", errInvalidSegment, segment)
	}
	return nil
}

// Push appends [segment] to [k]
func (k Key) Push(segment string) (Key, error) {
	if err := verifySegment(segment); err != nil {
		return "", err
	}
	if k == "" {
		return Key(segment), nil
	}
	return k + Separator + Key(segment), nil
}

func (k Key) Segments() []string {
	if k == "" {
		return nil
	}
	return strings.Split(string(k), Separator)
}

// FirstSegment returns the root segment of [k]
func (k Key) FirstSegment() string {
	s := string(k)
	if i := strings.Index(s, Separator); i >= 0 {
		return s[:i]
	}
	return s
}

// Addresses returns every address that appears as a segment of [k], in order
// of appearance.
func (k Key) Addresses() []address.Address {
	var addrs []address.Address
	for _, segment := range k.Segments() {
		if addr, err := address.Parse(segment); err == nil {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// ContainsAddress returns true if [addr] is one of the segments of [k]
func (k Key) ContainsAddress(addr address.Address) bool {
	target := addr.String()
	for _, segment := range k.Segments() {
		if segment == target {
			return true
		}
	}
	return false
}

func (k Key) Bytes() []byte { return []byte(k) }

func (k Key) String() string { return string(k) }

func (k Key) Less(other Key) bool { return k < other }
