// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

var _ database.KeyValueReader = (*WriteLog)(nil)

// WriteLog stages the writes of a single transaction on top of [parent]. The
// parent is left untouched until [WriteLog.Commit].
type WriteLog struct {
	parent  database.Database
	db      *versiondb.Database
	changed KeySet
}

func NewWriteLog(parent database.Database) *WriteLog {
	return &WriteLog{
		parent:  parent,
		db:      versiondb.New(parent),
		changed: NewKeySet(),
	}
}

func (w *WriteLog) Has(key []byte) (bool, error) {
	return w.db.Has(key)
}

func (w *WriteLog) Get(key []byte) ([]byte, error) {
	return w.db.Get(key)
}

func (w *WriteLog) Write(key Key, value []byte) error {
	if err := w.db.Put(key.Bytes(), value); err != nil {
		return err
	}
	w.changed.Add(key)
	return nil
}

func (w *WriteLog) Delete(key Key) error {
	if err := w.db.Delete(key.Bytes()); err != nil {
		return err
	}
	w.changed.Add(key)
	return nil
}

// KeysChanged returns every key written or deleted since the log was created
func (w *WriteLog) KeysChanged() KeySet {
	return w.changed
}

// Pre returns the state the write log was started from
func (w *WriteLog) Pre() database.KeyValueReader {
	return w.parent
}

// Commit writes the staged operations to the parent database
func (w *WriteLog) Commit() error {
	return w.db.Commit()
}

// Abort drops the staged operations
func (w *WriteLog) Abort() {
	w.db.Abort()
	w.changed = NewKeySet()
}
