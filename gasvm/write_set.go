// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/gas"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/vp"
)

var (
	errWriteSetWrongVersion = errors.New("wrong version")
	errEmptyKey             = errors.New("empty storage key")

	_ TxRunner      = (*WriteSetRunner)(nil)
	_ CodeValidator = (*WriteSetRunner)(nil)
)

// KeyValue is a single storage write
type KeyValue struct {
	Key   string `serialize:"true" json:"key"`
	Value []byte `serialize:"true" json:"value"`
}

// WriteSet is tx code that applies a fixed list of storage changes and asks
// for the authorization of [Verifiers].
type WriteSet struct {
	Verifiers []address.Address `serialize:"true" json:"verifiers"`
	Writes    []KeyValue        `serialize:"true" json:"writes"`
	Deletes   []string          `serialize:"true" json:"deletes"`
}

func (w *WriteSet) Bytes() ([]byte, error) {
	return Codec.Marshal(CodecVersion, w)
}

// ParseWriteSet parses and checks tx code built with [WriteSet.Bytes]
func ParseWriteSet(code []byte) (*WriteSet, error) {
	w := &WriteSet{}
	parsedVersion, err := Codec.Unmarshal(code, w)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errWriteSetWrongVersion
	}
	for _, verifier := range w.Verifiers {
		if err := verifier.Verify(); err != nil {
			return nil, fmt.Errorf("%w: %s", errInvalidVerifier, err)
		}
	}
	for _, kv := range w.Writes {
		if err := verifyKey(kv.Key); err != nil {
			return nil, err
		}
	}
	for _, key := range w.Deletes {
		if err := verifyKey(key); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func verifyKey(key string) error {
	if key == "" {
		return errEmptyKey
	}
	_, err := storage.NewKey(storage.Key(key).Segments()...)
	return err
}

// WriteSetRunner runs tx code encoded as a [WriteSet]
type WriteSetRunner struct{}

func (WriteSetRunner) ValidateCode(code []byte) error {
	_, err := ParseWriteSet(code)
	return err
}

func (WriteSetRunner) Run(_ context.Context, tx *vp.Tx, env *TxEnv) error {
	if len(tx.Code) == 0 {
		return nil
	}
	codeLen, err := gas.BytesLen(tx.Code)
	if err != nil {
		return err
	}
	if err := env.ChargeMemoryAccess(codeLen); err != nil {
		return err
	}

	w, err := ParseWriteSet(tx.Code)
	if err != nil {
		return err
	}
	for _, verifier := range w.Verifiers {
		if err := env.InsertVerifier(verifier); err != nil {
			return err
		}
	}
	for _, kv := range w.Writes {
		if err := env.Write(storage.Key(kv.Key), kv.Value); err != nil {
			return err
		}
	}
	for _, key := range w.Deletes {
		if err := env.Delete(storage.Key(key)); err != nil {
			return err
		}
	}
	return nil
}
