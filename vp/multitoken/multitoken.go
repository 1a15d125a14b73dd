// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package multitoken implements the native validity predicate that guards
// token conservation across every token held in the multitoken sub-space.
package multitoken

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/governance"
	"github.com/ava-labs/gasvm/storage"
	"github.com/ava-labs/gasvm/token"
	"github.com/ava-labs/gasvm/vp"
)

var (
	ErrArithmeticOverflow = errors.New("token amount overflow")
	ErrInvalidMinter      = errors.New("invalid minter")

	_ vp.NativeVp = (*VP)(nil)
	_ vp.Factory  = New
)

// VP checks that, for every token, the net change of the balances equals the
// net change of the minted supply.
type VP struct {
	ctx *vp.Ctx
}

func New(ctx *vp.Ctx) vp.NativeVp {
	return &VP{ctx: ctx}
}

// changes accumulates unsigned increases and decreases per token
type changes map[address.Address]*token.Amount

func (c changes) add(tok address.Address, amount *token.Amount) error {
	current, ok := c[tok]
	if !ok {
		current = new(token.Amount)
	}
	sum, ok := token.CheckedAdd(current, amount)
	if !ok {
		return fmt.Errorf("%w: %s", ErrArithmeticOverflow, tok)
	}
	c[tok] = sum
	return nil
}

func (c changes) get(tok address.Address) *token.Amount {
	if amount, ok := c[tok]; ok {
		return amount
	}
	return new(token.Amount)
}

func (v *VP) ValidateTx(
	tx *vp.Tx,
	keysChanged storage.KeySet,
	verifiers set.Set[address.Address],
) (bool, error) {
	var (
		incChanges = changes{}
		decChanges = changes{}
		incMints   = changes{}
		decMints   = changes{}
	)

	for _, key := range keysChanged.List() {
		if tok, ok := token.IsAnyMintedBalanceKey(key); ok {
			if err := v.applyBalanceChange(key, tok, incMints, decMints); err != nil {
				return false, err
			}
			valid, err := v.IsValidMinter(tok, verifiers)
			if err != nil || !valid {
				return false, err
			}
			continue
		}
		if tok, _, ok := token.IsAnyTokenBalanceKey(key); ok {
			if err := v.applyBalanceChange(key, tok, incChanges, decChanges); err != nil {
				return false, err
			}
			continue
		}
		if tok, ok := token.IsAnyMinterKey(key); ok {
			valid, err := v.IsValidMinter(tok, verifiers)
			if err != nil || !valid {
				return false, err
			}
			continue
		}
		if _, ok := token.IsAnyTokenParameterKey(key); ok {
			return governance.IsProposalAccepted(v.ctx.Pre(), tx.Data)
		}
		if token.IsMultitokenKey(key) {
			return false, nil
		}
	}

	tokens := set.NewSet[address.Address](len(incChanges) + len(incMints))
	for _, m := range []changes{incChanges, decChanges, incMints, decMints} {
		for tok := range m {
			tokens.Add(tok)
		}
	}
	sorted := tokens.List()
	utils.Sort(sorted)

	for _, tok := range sorted {
		if !conserved(
			incChanges.get(tok),
			decChanges.get(tok),
			incMints.get(tok),
			decMints.get(tok),
		) {
			return false, nil
		}
	}
	return true, nil
}

// applyBalanceChange reads the amount stored at [key] before and after the
// transaction and records the difference in [inc] or [dec].
func (v *VP) applyBalanceChange(key storage.Key, tok address.Address, inc, dec changes) error {
	pre, err := v.readAmount(v.ctx.ReadPre, key)
	if err != nil {
		return err
	}
	post, err := v.readAmount(v.ctx.ReadPost, key)
	if err != nil {
		return err
	}
	if diff, ok := token.CheckedSub(post, pre); ok {
		return inc.add(tok, diff)
	}
	diff, _ := token.CheckedSub(pre, post)
	return dec.add(tok, diff)
}

func (*VP) readAmount(read func(storage.Key) ([]byte, error), key storage.Key) (*token.Amount, error) {
	b, err := read(key)
	if err != nil {
		return nil, err
	}
	amount, err := token.ParseAmount(b)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}
	return amount, nil
}

// IsValidMinter returns true if the minter of [tok] recorded in the post
// state is the IBC bridge and the bridge authorized the transaction. Only IBC
// tokens can be minted.
func (v *VP) IsValidMinter(tok address.Address, verifiers set.Set[address.Address]) (bool, error) {
	if !tok.IsIbcToken() {
		return false, nil
	}
	b, err := v.ctx.ReadPost(token.MinterKey(tok))
	if err != nil {
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	minter, err := address.FromBytes(b)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %s", ErrInvalidMinter, token.MinterKey(tok), err)
	}
	return minter == address.Ibc && verifiers.Contains(address.Ibc), nil
}

// conserved reports whether the net balance change equals the net minted
// supply change. Both sides are compared as unsigned differences in the same
// direction; a balance increase paired with a supply decrease, or the
// reverse, is never conserved.
func conserved(incChange, decChange, incMint, decMint *token.Amount) bool {
	if !incChange.Lt(decChange) {
		if incMint.Lt(decMint) {
			return false
		}
		netChange, _ := token.CheckedSub(incChange, decChange)
		netMint, _ := token.CheckedSub(incMint, decMint)
		return netChange.Eq(netMint)
	}
	if !incMint.Lt(decMint) {
		return false
	}
	netChange, _ := token.CheckedSub(decChange, incChange)
	netMint, _ := token.CheckedSub(decMint, incMint)
	return netChange.Eq(netMint)
}
