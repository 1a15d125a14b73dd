// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gasvm

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/formatting"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/gasvm/address"
	"github.com/ava-labs/gasvm/governance"
	"github.com/ava-labs/gasvm/token"
	"github.com/ava-labs/gasvm/vp"
)

// Genesis is the initial content of the ledger
type Genesis struct {
	Balances         []GenesisBalance `json:"balances"`
	Minters          []GenesisMinter  `json:"minters"`
	PendingProposals []cjson.Uint64   `json:"pendingProposals"`
	// PublicKeys authorize the accounts, and the IBC relayer, to sign txs
	PublicKeys []GenesisPublicKey `json:"publicKeys"`
}

type GenesisBalance struct {
	Token  string       `json:"token"`
	Owner  string       `json:"owner"`
	Amount cjson.Uint64 `json:"amount"`
}

type GenesisMinter struct {
	Token  string `json:"token"`
	Minter string `json:"minter"`
}

type GenesisPublicKey struct {
	Owner string `json:"owner"`
	// PublicKey is the hex encoded compressed secp256k1 public key
	PublicKey string `json:"publicKey"`
}

// ParseGenesis parses [b]. Empty bytes yield an empty ledger.
func ParseGenesis(b []byte) (*Genesis, error) {
	genesis := &Genesis{}
	if len(b) == 0 {
		return genesis, nil
	}
	if err := json.Unmarshal(b, genesis); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	return genesis, nil
}

// Apply writes the genesis content to [db]. The minted supply of IBC tokens
// is set to the sum of their balances so the ledger starts out conserved.
func (g *Genesis) Apply(db database.KeyValueWriter) error {
	minted := make(map[address.Address]*token.Amount)
	for _, balance := range g.Balances {
		tok, err := address.Parse(balance.Token)
		if err != nil {
			return fmt.Errorf("invalid genesis token %q: %w", balance.Token, err)
		}
		owner, err := address.Parse(balance.Owner)
		if err != nil {
			return fmt.Errorf("invalid genesis owner %q: %w", balance.Owner, err)
		}
		amount := token.NewAmount(uint64(balance.Amount))
		if err := db.Put(token.BalanceKey(tok, owner).Bytes(), token.AmountBytes(amount)); err != nil {
			return err
		}

		if !tok.IsIbcToken() {
			continue
		}
		total, ok := minted[tok]
		if !ok {
			total = new(token.Amount)
		}
		sum, ok := token.CheckedAdd(total, amount)
		if !ok {
			return fmt.Errorf("genesis minted supply of %s overflows", tok)
		}
		minted[tok] = sum
	}
	for tok, total := range minted {
		if err := db.Put(token.MintedBalanceKey(tok).Bytes(), token.AmountBytes(total)); err != nil {
			return err
		}
	}

	for _, minter := range g.Minters {
		tok, err := address.Parse(minter.Token)
		if err != nil {
			return fmt.Errorf("invalid genesis token %q: %w", minter.Token, err)
		}
		addr, err := address.Parse(minter.Minter)
		if err != nil {
			return fmt.Errorf("invalid genesis minter %q: %w", minter.Minter, err)
		}
		addrBytes, err := addr.Bytes()
		if err != nil {
			return err
		}
		if err := db.Put(token.MinterKey(tok).Bytes(), addrBytes); err != nil {
			return err
		}
	}

	factory := secp256k1.Factory{}
	for _, pk := range g.PublicKeys {
		owner, err := address.Parse(pk.Owner)
		if err != nil {
			return fmt.Errorf("invalid genesis key owner %q: %w", pk.Owner, err)
		}
		pkBytes, err := formatting.Decode(formatting.Hex, pk.PublicKey)
		if err != nil {
			return fmt.Errorf("invalid genesis public key of %s: %w", owner, err)
		}
		if _, err := factory.ToPublicKey(pkBytes); err != nil {
			return fmt.Errorf("invalid genesis public key of %s: %w", owner, err)
		}
		if err := db.Put(vp.PublicKeyKey(owner).Bytes(), pkBytes); err != nil {
			return err
		}
	}

	for _, id := range g.PendingProposals {
		if err := db.Put(governance.PendingExecutionKey(uint64(id)).Bytes(), []byte{1}); err != nil {
			return err
		}
	}
	return nil
}
