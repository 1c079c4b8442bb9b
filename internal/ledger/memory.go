package ledger

import (
	"context"
	"math"
	"sync"

	"curve-engine/internal/domain"
)

type balanceKey struct {
	account domain.AccountRef
	asset   domain.AssetID
}

// Memory is an in-memory Ledger. A Tx holds the ledger lock from Begin
// until Commit or Abort, which serializes transactions and makes the
// staged-balance checks authoritative.
type Memory struct {
	mu       sync.Mutex
	balances map[balanceKey]uint64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[balanceKey]uint64)}
}

// Credit funds an account outside any transaction. Test and faucet use.
func (m *Memory) Credit(account domain.AccountRef, asset domain.AssetID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := balanceKey{account, asset}
	if m.balances[k] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	m.balances[k] += amount
	return nil
}

// BalanceOf returns the committed balance of account in asset.
func (m *Memory) BalanceOf(_ context.Context, account domain.AccountRef, asset domain.AssetID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[balanceKey{account, asset}], nil
}

// Begin opens a transaction and takes the ledger lock.
func (m *Memory) Begin() Tx {
	m.mu.Lock()
	return &memoryTx{ledger: m, staged: make(map[balanceKey]uint64)}
}

// Verify interface compliance at compile time.
var _ Ledger = (*Memory)(nil)

type memoryTx struct {
	ledger *Memory
	staged map[balanceKey]uint64 // balances as they would be after commit
	done   bool
}

func (tx *memoryTx) stagedBalance(k balanceKey) uint64 {
	if v, ok := tx.staged[k]; ok {
		return v
	}
	return tx.ledger.balances[k]
}

func (tx *memoryTx) Transfer(from, to domain.AccountRef, asset domain.AssetID, amount uint64) error {
	if amount == 0 {
		return nil
	}

	fromKey := balanceKey{from, asset}
	toKey := balanceKey{to, asset}

	fromBal := tx.stagedBalance(fromKey)
	if fromBal < amount {
		return ErrInsufficientFunds
	}
	// A transfer to the same account is a validated no-op; staging both
	// sides would apply the credit against the pre-debit balance.
	if fromKey == toKey {
		return nil
	}
	toBal := tx.stagedBalance(toKey)
	if toBal > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}

	tx.staged[fromKey] = fromBal - amount
	tx.staged[toKey] = toBal + amount
	return nil
}

func (tx *memoryTx) Commit() {
	if tx.done {
		return
	}
	for k, v := range tx.staged {
		if v == 0 {
			delete(tx.ledger.balances, k)
			continue
		}
		tx.ledger.balances[k] = v
	}
	tx.done = true
	tx.ledger.mu.Unlock()
}

func (tx *memoryTx) Abort() {
	if tx.done {
		return
	}
	tx.done = true
	tx.ledger.mu.Unlock()
}
