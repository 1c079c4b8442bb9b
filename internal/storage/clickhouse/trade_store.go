package clickhouse

import (
	"context"
	"fmt"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// TradeStore implements storage.TradeStore using ClickHouse. Intended for
// analytics over trade history; settlement-critical records belong in
// PostgreSQL or memory.
type TradeStore struct {
	conn *Conn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(conn *Conn) *TradeStore {
	return &TradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a settled trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, e *domain.TradeEvent) error {
	if e == nil || e.TradeID == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.TradeEvent{e})
}

// InsertBulk adds multiple trades in one batch. Fails the entire batch on
// any duplicate trade_id.
func (s *TradeStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{})
	for _, e := range events {
		if e == nil || e.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[e.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.TradeID] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, e := range events {
		exists, err := s.exists(ctx, e.TradeID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_timeseries (
			trade_id, mint, user_identity, side,
			token_amount, reserve_amount, fee_amount,
			token_reserves, price, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.TradeID, e.Mint.String(), e.User.String(), e.Side,
			e.TokenAmount, e.ReserveAmount, e.FeeAmount,
			e.TokenReserves, e.Price, uint64(e.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeStore) GetByMint(ctx context.Context, mint domain.AssetID) ([]*domain.TradeEvent, error) {
	query := `
		SELECT trade_id, mint, user_identity, side,
		       token_amount, reserve_amount, fee_amount,
		       token_reserves, price, timestamp_ms
		FROM trade_timeseries
		WHERE mint = ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint.String())
	if err != nil {
		return nil, fmt.Errorf("get trades by mint: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByTimeRange retrieves trades for a mint within [start, end] (inclusive).
func (s *TradeStore) GetByTimeRange(ctx context.Context, mint domain.AssetID, start, end int64) ([]*domain.TradeEvent, error) {
	query := `
		SELECT trade_id, mint, user_identity, side,
		       token_amount, reserve_amount, fee_amount,
		       token_reserves, price, timestamp_ms
		FROM trade_timeseries
		WHERE mint = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint.String(), uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("get trades by time range: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTrades(rows rowScanner) ([]*domain.TradeEvent, error) {
	var result []*domain.TradeEvent
	for rows.Next() {
		var e domain.TradeEvent
		var mint, user string
		var ts uint64

		err := rows.Scan(
			&e.TradeID, &mint, &user, &e.Side,
			&e.TokenAmount, &e.ReserveAmount, &e.FeeAmount,
			&e.TokenReserves, &e.Price, &ts,
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
		e.Timestamp = int64(ts)

		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return result, nil
}

func (s *TradeStore) exists(ctx context.Context, tradeID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM trade_timeseries WHERE trade_id = ?`, tradeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
