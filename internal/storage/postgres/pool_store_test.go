package postgres

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

func testPoolRecord(name string, createdAt int64) *domain.BondingCurvePool {
	return &domain.BondingCurvePool{
		Mint:             testAsset(name),
		Creator:          testIdentity("creator"),
		InitialPrice:     math.LegacyMustNewDecFromStr("0.01"),
		CurveSlope:       math.LegacyMustNewDecFromStr("0.00001"),
		TokenReserves:    0,
		TokenTotalSupply: 5000,
		TokenVault:       testRef(name + "-token-vault"),
		ReserveVault:     testRef(name + "-reserve-vault"),
		McapLimit:        100_000,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestPoolStore_InsertGetUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewPoolStore(pool)
	p := testPoolRecord("mint-a", 1000)

	require.NoError(t, s.Insert(ctx, p))

	got, err := s.GetByMint(ctx, p.Mint)
	require.NoError(t, err)
	require.Equal(t, p.Mint, got.Mint)
	require.True(t, p.InitialPrice.Equal(got.InitialPrice), "initial price %s != %s", p.InitialPrice, got.InitialPrice)
	require.True(t, p.CurveSlope.Equal(got.CurveSlope))
	require.Equal(t, p.TokenVault, got.TokenVault)
	require.Equal(t, uint64(100_000), got.McapLimit)
	require.False(t, got.Complete)

	// Duplicate insert rejected.
	require.ErrorIs(t, s.Insert(ctx, testPoolRecord("mint-a", 2000)), storage.ErrDuplicateKey)

	// Update reserves and flags.
	got.TokenReserves = 750
	got.Complete = true
	got.Withdrawn = true
	got.UpdatedAt = 2000
	require.NoError(t, s.Update(ctx, got))

	updated, err := s.GetByMint(ctx, p.Mint)
	require.NoError(t, err)
	require.Equal(t, uint64(750), updated.TokenReserves)
	require.True(t, updated.Complete)
	require.True(t, updated.Withdrawn)
}

func TestPoolStore_GetMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	s := NewPoolStore(pool)

	_, err := s.GetByMint(context.Background(), testAsset("missing"))
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Update(context.Background(), testPoolRecord("missing", 1))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPoolStore_ListOrdered(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewPoolStore(pool)

	require.NoError(t, s.Insert(ctx, testPoolRecord("mint-b", 2000)))
	require.NoError(t, s.Insert(ctx, testPoolRecord("mint-a", 1000)))

	pools, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	require.Equal(t, int64(1000), pools[0].CreatedAt)
	require.Equal(t, int64(2000), pools[1].CreatedAt)
}
