// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// Reader reads raw values out of a view of the ledger. A missing key reads as
// a nil value.
type Reader interface {
	Read(key Key) ([]byte, error)
}
