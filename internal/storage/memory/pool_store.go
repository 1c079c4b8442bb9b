package memory

import (
	"context"
	"sort"
	"sync"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu   sync.RWMutex
	data map[domain.AssetID]*domain.BondingCurvePool // keyed by mint
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		data: make(map[domain.AssetID]*domain.BondingCurvePool),
	}
}

// Insert adds a new pool. Returns ErrDuplicateKey if a pool for the mint exists.
func (s *PoolStore) Insert(_ context.Context, p *domain.BondingCurvePool) error {
	if p == nil || p.Mint.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	poolCopy := *p
	s.data[p.Mint] = &poolCopy
	return nil
}

// GetByMint retrieves the pool for a mint. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByMint(_ context.Context, mint domain.AssetID) (*domain.BondingCurvePool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	poolCopy := *p
	return &poolCopy, nil
}

// Update overwrites an existing pool. Returns ErrNotFound if not exists.
func (s *PoolStore) Update(_ context.Context, p *domain.BondingCurvePool) error {
	if p == nil || p.Mint.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.Mint]; !exists {
		return storage.ErrNotFound
	}

	poolCopy := *p
	s.data[p.Mint] = &poolCopy
	return nil
}

// List retrieves all pools ordered by created_at ASC.
func (s *PoolStore) List(_ context.Context) ([]*domain.BondingCurvePool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BondingCurvePool, 0, len(s.data))
	for _, p := range s.data {
		poolCopy := *p
		result = append(result, &poolCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].Mint.String() < result[j].Mint.String()
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PoolStore = (*PoolStore)(nil)
