// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/google/btree"
)

const keySetDegree = 8

// KeySet is an ordered set of keys. Iteration always happens in key order so
// every replica visits changed keys identically. Copies of a KeySet share the
// same underlying set.
type KeySet struct {
	tree *btree.BTreeG[Key]
}

func NewKeySet(keys ...Key) KeySet {
	s := KeySet{tree: btree.NewG[Key](keySetDegree, Key.Less)}
	for _, key := range keys {
		s.tree.ReplaceOrInsert(key)
	}
	return s
}

// Add inserts [key] into the set. The set must have been created with
// [NewKeySet].
func (s KeySet) Add(key Key) {
	s.tree.ReplaceOrInsert(key)
}

func (s KeySet) Has(key Key) bool {
	return s.tree != nil && s.tree.Has(key)
}

func (s KeySet) Len() int {
	if s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

// List returns the keys in ascending order
func (s KeySet) List() []Key {
	keys := make([]Key, 0, s.Len())
	if s.tree == nil {
		return keys
	}
	s.tree.Ascend(func(key Key) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Filter returns a new set with the keys satisfying [keep]
func (s KeySet) Filter(keep func(Key) bool) KeySet {
	filtered := NewKeySet()
	if s.tree == nil {
		return filtered
	}
	s.tree.Ascend(func(key Key) bool {
		if keep(key) {
			filtered.tree.ReplaceOrInsert(key)
		}
		return true
	})
	return filtered
}
