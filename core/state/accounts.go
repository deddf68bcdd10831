package state

import (
	"fmt"
	"math/big"

	"editionhouse/core/types"
)

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// GetAccount returns the account stored for addr, or nil when none exists.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("state: address must not be empty")
	}
	var stored storedAccount
	ok, err := m.getRLP(accountKey(addr), &stored)
	if err != nil || !ok {
		return nil, err
	}
	return &types.Account{Nonce: stored.Nonce, Balance: stored.Balance}, nil
}

// PutAccount stores account under addr. A nil account deletes the entry.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	if account == nil {
		m.del(accountKey(addr))
		return nil
	}
	account = types.EnsureAccount(account.Clone())
	if account.Balance.Sign() < 0 {
		return fmt.Errorf("state: negative balance")
	}
	return m.putRLP(accountKey(addr), storedAccount{Nonce: account.Nonce, Balance: account.Balance})
}

// Credit adds amount to the balance of addr. It is intended for genesis
// funding and tests.
func (m *Manager) Credit(addr []byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: credit amount must be non-negative")
	}
	acc, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	acc = types.EnsureAccount(acc)
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return m.PutAccount(addr, acc)
}

// Balance returns the balance held by addr.
func (m *Manager) Balance(addr []byte) (*big.Int, error) {
	acc, err := m.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(types.EnsureAccount(acc).Balance), nil
}
