// Package ledger models the asset-transfer primitive of the hosting
// execution environment. The engine stages every transfer of an operation
// in a single Tx; nothing is visible to other callers until Commit, and a
// staged Tx that is abandoned leaves no trace. Commit cannot fail: all
// balance checks happen at stage time.
package ledger

import (
	"context"
	"errors"

	"curve-engine/internal/domain"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the account's
	// (staged) balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBalanceOverflow is returned when a credit would overflow uint64.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Ledger provides balance lookup and atomic multi-transfer transactions.
type Ledger interface {
	// BalanceOf returns the committed balance of account in asset.
	// Unknown accounts hold zero.
	BalanceOf(ctx context.Context, account domain.AccountRef, asset domain.AssetID) (uint64, error)

	// Begin opens a transaction. The caller must finish it with Commit or
	// Abort; Abort after Commit is a no-op, so `defer tx.Abort()` is safe.
	Begin() Tx
}

// Tx is a staged group of transfers applied all-or-nothing.
type Tx interface {
	// Transfer stages a movement of amount smallest units of asset.
	// The debit is validated against the staged balance of from, so a
	// transfer can spend funds staged earlier in the same Tx.
	Transfer(from, to domain.AccountRef, asset domain.AssetID, amount uint64) error

	// Commit atomically applies every staged transfer.
	Commit()

	// Abort discards the staged transfers.
	Abort()
}
