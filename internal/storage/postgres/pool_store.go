package postgres

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/jackc/pgx/v5"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// PoolStore implements storage.PoolStore using PostgreSQL.
type PoolStore struct {
	pool *Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

const poolColumns = `
	mint, creator, initial_price::text, curve_slope::text,
	token_reserves, token_total_supply,
	token_vault, reserve_vault, mcap_limit, complete, withdrawn,
	created_at, updated_at
`

// Insert adds a new pool. Returns ErrDuplicateKey if a pool for the mint exists.
func (s *PoolStore) Insert(ctx context.Context, p *domain.BondingCurvePool) error {
	if p == nil || p.Mint.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO bonding_curve_pools (
			mint, creator, initial_price, curve_slope,
			token_reserves, token_total_supply,
			token_vault, reserve_vault, mcap_limit, complete, withdrawn,
			created_at, updated_at
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		p.Mint.String(),
		p.Creator.String(),
		p.InitialPrice.String(),
		p.CurveSlope.String(),
		int64(p.TokenReserves),
		int64(p.TokenTotalSupply),
		p.TokenVault.String(),
		p.ReserveVault.String(),
		int64(p.McapLimit),
		p.Complete,
		p.Withdrawn,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

// GetByMint retrieves the pool for a mint. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByMint(ctx context.Context, mint domain.AssetID) (*domain.BondingCurvePool, error) {
	query := `SELECT ` + poolColumns + ` FROM bonding_curve_pools WHERE mint = $1`

	row := s.pool.QueryRow(ctx, query, mint.String())
	p, err := scanPool(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool by mint: %w", err)
	}
	return p, nil
}

// Update overwrites an existing pool. Returns ErrNotFound if not exists.
func (s *PoolStore) Update(ctx context.Context, p *domain.BondingCurvePool) error {
	if p == nil || p.Mint.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE bonding_curve_pools SET
			creator = $2,
			initial_price = $3::numeric,
			curve_slope = $4::numeric,
			token_reserves = $5,
			token_total_supply = $6,
			token_vault = $7,
			reserve_vault = $8,
			mcap_limit = $9,
			complete = $10,
			withdrawn = $11,
			created_at = $12,
			updated_at = $13
		WHERE mint = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		p.Mint.String(),
		p.Creator.String(),
		p.InitialPrice.String(),
		p.CurveSlope.String(),
		int64(p.TokenReserves),
		int64(p.TokenTotalSupply),
		p.TokenVault.String(),
		p.ReserveVault.String(),
		int64(p.McapLimit),
		p.Complete,
		p.Withdrawn,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves all pools ordered by created_at ASC.
func (s *PoolStore) List(ctx context.Context) ([]*domain.BondingCurvePool, error) {
	query := `SELECT ` + poolColumns + ` FROM bonding_curve_pools ORDER BY created_at ASC, mint ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var result []*domain.BondingCurvePool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return result, nil
}

// scanPool scans a pool row from either pgx.Row or pgx.Rows.
func scanPool(row pgx.Row) (*domain.BondingCurvePool, error) {
	var p domain.BondingCurvePool
	var mint, creator, initialPrice, curveSlope string
	var tokenReserves, tokenTotalSupply, mcapLimit int64
	var tokenVault, reserveVault string

	err := row.Scan(
		&mint, &creator, &initialPrice, &curveSlope,
		&tokenReserves, &tokenTotalSupply,
		&tokenVault, &reserveVault, &mcapLimit, &p.Complete, &p.Withdrawn,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Mint, err = domain.ParseAssetID(mint); err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	if p.Creator, err = domain.IdentityFromString(creator); err != nil {
		return nil, fmt.Errorf("decode creator: %w", err)
	}
	if p.InitialPrice, err = math.LegacyNewDecFromStr(initialPrice); err != nil {
		return nil, fmt.Errorf("decode initial price: %w", err)
	}
	if p.CurveSlope, err = math.LegacyNewDecFromStr(curveSlope); err != nil {
		return nil, fmt.Errorf("decode curve slope: %w", err)
	}
	if p.TokenVault, err = domain.AccountRefFromString(tokenVault); err != nil {
		return nil, fmt.Errorf("decode token vault: %w", err)
	}
	if p.ReserveVault, err = domain.AccountRefFromString(reserveVault); err != nil {
		return nil, fmt.Errorf("decode reserve vault: %w", err)
	}
	p.TokenReserves = uint64(tokenReserves)
	p.TokenTotalSupply = uint64(tokenTotalSupply)
	p.McapLimit = uint64(mcapLimit)

	return &p, nil
}
