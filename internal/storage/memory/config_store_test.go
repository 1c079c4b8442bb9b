package memory

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

func testIdentity(name string) domain.Identity {
	return domain.Identity(sha256.Sum256([]byte(name)))
}

func testAsset(name string) domain.AssetID {
	return domain.AssetID(sha256.Sum256([]byte(name)))
}

func TestConfigStore_GetBeforeSave(t *testing.T) {
	s := NewConfigStore()

	_, err := s.Get(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfigStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewConfigStore()

	cfg := &domain.GlobalConfig{
		Initialized:    true,
		Authority:      testIdentity("authority"),
		ReserveMint:    testAsset("reserve"),
		FeeBasisPoints: 100,
	}
	require.NoError(t, s.Save(ctx, cfg))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	// Mutating the returned copy must not affect the store.
	got.FeeBasisPoints = 9999
	again, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(100), again.FeeBasisPoints)
}

func TestConfigStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewConfigStore()

	require.NoError(t, s.Save(ctx, &domain.GlobalConfig{ReserveSupply: 1}))
	require.NoError(t, s.Save(ctx, &domain.GlobalConfig{ReserveSupply: 2}))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.ReserveSupply)
}

func TestConfigStore_SaveNil(t *testing.T) {
	err := NewConfigStore().Save(context.Background(), nil)
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
