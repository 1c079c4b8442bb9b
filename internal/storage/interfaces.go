package storage

import (
	"context"

	"curve-engine/internal/domain"
)

// ConfigStore provides access to the global_config singleton.
type ConfigStore interface {
	// Get retrieves the configuration. Returns ErrNotFound before the
	// first Save.
	Get(ctx context.Context) (*domain.GlobalConfig, error)

	// Save persists the configuration, creating or overwriting it.
	Save(ctx context.Context, c *domain.GlobalConfig) error
}

// PoolStore provides access to bonding_curve_pools storage.
type PoolStore interface {
	// Insert adds a new pool. Returns ErrDuplicateKey if a pool for the
	// mint exists. Pools are never deleted.
	Insert(ctx context.Context, p *domain.BondingCurvePool) error

	// GetByMint retrieves the pool for a mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint domain.AssetID) (*domain.BondingCurvePool, error)

	// Update overwrites an existing pool. Returns ErrNotFound if not exists.
	Update(ctx context.Context, p *domain.BondingCurvePool) error

	// List retrieves all pools ordered by created_at ASC.
	List(ctx context.Context) ([]*domain.BondingCurvePool, error)
}

// TradeStore provides access to trade_events storage.
type TradeStore interface {
	// Insert adds a settled trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, e *domain.TradeEvent) error

	// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
	GetByMint(ctx context.Context, mint domain.AssetID) ([]*domain.TradeEvent, error)

	// GetByTimeRange retrieves trades for a mint within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, mint domain.AssetID, start, end int64) ([]*domain.TradeEvent, error)
}
