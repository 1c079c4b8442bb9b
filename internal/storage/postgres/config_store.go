package postgres

import (
	"context"
	"fmt"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// ConfigStore implements storage.ConfigStore using PostgreSQL.
// The table holds at most one row, enforced by a fixed primary key.
type ConfigStore struct {
	pool *Pool
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(pool *Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ConfigStore = (*ConfigStore)(nil)

// Get retrieves the configuration. Returns ErrNotFound before the first Save.
func (s *ConfigStore) Get(ctx context.Context) (*domain.GlobalConfig, error) {
	query := `
		SELECT initialized, authority, fee_recipient, owner_wallet,
		       reserve_mint, reserve_vault, reserve_supply,
		       pool_creation_token_amount, pool_creation_fee_amount,
		       creation_fee, fee_basis_points, mcap_limit, updated_at
		FROM global_config
		WHERE id = 1
	`

	var c domain.GlobalConfig
	var authority, feeRecipient, ownerWallet string
	var reserveMint, reserveVault string
	var reserveSupply, tokenAmount, feeAmount int64
	var creationFee, feeBasisPoints, mcapLimit int64

	row := s.pool.QueryRow(ctx, query)
	err := row.Scan(
		&c.Initialized, &authority, &feeRecipient, &ownerWallet,
		&reserveMint, &reserveVault, &reserveSupply,
		&tokenAmount, &feeAmount,
		&creationFee, &feeBasisPoints, &mcapLimit, &c.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get global config: %w", err)
	}

	if c.Authority, err = domain.IdentityFromString(authority); err != nil {
		return nil, fmt.Errorf("decode authority: %w", err)
	}
	if c.FeeRecipient, err = domain.IdentityFromString(feeRecipient); err != nil {
		return nil, fmt.Errorf("decode fee recipient: %w", err)
	}
	if c.OwnerWallet, err = domain.IdentityFromString(ownerWallet); err != nil {
		return nil, fmt.Errorf("decode owner wallet: %w", err)
	}
	if c.ReserveMint, err = domain.ParseAssetID(reserveMint); err != nil {
		return nil, fmt.Errorf("decode reserve mint: %w", err)
	}
	if c.ReserveVault, err = domain.AccountRefFromString(reserveVault); err != nil {
		return nil, fmt.Errorf("decode reserve vault: %w", err)
	}
	c.ReserveSupply = uint64(reserveSupply)
	c.PoolCreationTokenAmount = uint64(tokenAmount)
	c.PoolCreationFeeAmount = uint64(feeAmount)
	c.CreationFee = uint64(creationFee)
	c.FeeBasisPoints = uint64(feeBasisPoints)
	c.McapLimit = uint64(mcapLimit)

	return &c, nil
}

// Save persists the configuration, creating or overwriting it.
func (s *ConfigStore) Save(ctx context.Context, c *domain.GlobalConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO global_config (
			id, initialized, authority, fee_recipient, owner_wallet,
			reserve_mint, reserve_vault, reserve_supply,
			pool_creation_token_amount, pool_creation_fee_amount,
			creation_fee, fee_basis_points, mcap_limit, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			initialized = EXCLUDED.initialized,
			authority = EXCLUDED.authority,
			fee_recipient = EXCLUDED.fee_recipient,
			owner_wallet = EXCLUDED.owner_wallet,
			reserve_mint = EXCLUDED.reserve_mint,
			reserve_vault = EXCLUDED.reserve_vault,
			reserve_supply = EXCLUDED.reserve_supply,
			pool_creation_token_amount = EXCLUDED.pool_creation_token_amount,
			pool_creation_fee_amount = EXCLUDED.pool_creation_fee_amount,
			creation_fee = EXCLUDED.creation_fee,
			fee_basis_points = EXCLUDED.fee_basis_points,
			mcap_limit = EXCLUDED.mcap_limit,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		c.Initialized,
		c.Authority.String(),
		c.FeeRecipient.String(),
		c.OwnerWallet.String(),
		c.ReserveMint.String(),
		c.ReserveVault.String(),
		int64(c.ReserveSupply),
		int64(c.PoolCreationTokenAmount),
		int64(c.PoolCreationFeeAmount),
		int64(c.CreationFee),
		int64(c.FeeBasisPoints),
		int64(c.McapLimit),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save global config: %w", err)
	}
	return nil
}
