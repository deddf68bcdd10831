package state

import (
	"fmt"

	"editionhouse/native/collectible"
)

type storedToken struct {
	Owner   [20]byte
	Creator [20]byte
}

// CollectibleSupplyGet returns the number of minted collectibles.
func (m *Manager) CollectibleSupplyGet() (uint64, error) {
	var supply uint64
	if _, err := m.getRLP(collectibleSupplyKey, &supply); err != nil {
		return 0, err
	}
	return supply, nil
}

// CollectibleSupplyPut stores the minted supply counter.
func (m *Manager) CollectibleSupplyPut(supply uint64) error {
	return m.putRLP(collectibleSupplyKey, supply)
}

// CollectibleTokenGet returns the record of tokenID.
func (m *Manager) CollectibleTokenGet(tokenID uint64) (*collectible.Token, bool, error) {
	var stored storedToken
	ok, err := m.getRLP(uint64Key(collectibleTokenPrefix, tokenID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &collectible.Token{ID: tokenID, Owner: stored.Owner, Creator: stored.Creator}, true, nil
}

// CollectibleTokenPut stores the record of a minted token.
func (m *Manager) CollectibleTokenPut(token *collectible.Token) error {
	if token == nil {
		return fmt.Errorf("state: nil token")
	}
	return m.putRLP(uint64Key(collectibleTokenPrefix, token.ID), storedToken{Owner: token.Owner, Creator: token.Creator})
}

// CollectibleMintedGet returns how many tokens wallet has minted.
func (m *Manager) CollectibleMintedGet(wallet [20]byte) (uint64, error) {
	var count uint64
	if _, err := m.getRLP(prefixed(collectibleMintPrefix, wallet[:]), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// CollectibleMintedPut stores the mint counter of wallet.
func (m *Manager) CollectibleMintedPut(wallet [20]byte, count uint64) error {
	return m.putRLP(prefixed(collectibleMintPrefix, wallet[:]), count)
}
