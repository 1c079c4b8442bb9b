package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, mint, user_identity, side,
	token_amount, reserve_amount, fee_amount,
	token_reserves, price, timestamp_ms
`

// Insert adds a settled trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, e *domain.TradeEvent) error {
	if e == nil || e.TradeID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_events (
			trade_id, mint, user_identity, side,
			token_amount, reserve_amount, fee_amount,
			token_reserves, price, timestamp_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		e.TradeID,
		e.Mint.String(),
		e.User.String(),
		e.Side,
		int64(e.TokenAmount),
		int64(e.ReserveAmount),
		int64(e.FeeAmount),
		int64(e.TokenReserves),
		e.Price,
		e.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeStore) GetByMint(ctx context.Context, mint domain.AssetID) ([]*domain.TradeEvent, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade_events
		WHERE mint = $1
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint.String())
	if err != nil {
		return nil, fmt.Errorf("get trades by mint: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByTimeRange retrieves trades for a mint within [start, end] (inclusive).
func (s *TradeStore) GetByTimeRange(ctx context.Context, mint domain.AssetID, start, end int64) ([]*domain.TradeEvent, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade_events
		WHERE mint = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint.String(), start, end)
	if err != nil {
		return nil, fmt.Errorf("get trades by time range: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrades(rows pgx.Rows) ([]*domain.TradeEvent, error) {
	var result []*domain.TradeEvent
	for rows.Next() {
		var e domain.TradeEvent
		var mint, user string
		var tokenAmount, reserveAmount, feeAmount, tokenReserves int64

		err := rows.Scan(
			&e.TradeID, &mint, &user, &e.Side,
			&tokenAmount, &reserveAmount, &feeAmount,
			&tokenReserves, &e.Price, &e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}

		if e.Mint, err = domain.ParseAssetID(mint); err != nil {
			return nil, fmt.Errorf("decode mint: %w", err)
		}
		if e.User, err = domain.IdentityFromString(user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		e.TokenAmount = uint64(tokenAmount)
		e.ReserveAmount = uint64(reserveAmount)
		e.FeeAmount = uint64(feeAmount)
		e.TokenReserves = uint64(tokenReserves)

		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return result, nil
}
