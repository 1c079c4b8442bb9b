package memory

import (
	"context"
	"sort"
	"sync"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeEvent // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.TradeEvent),
	}
}

// Insert adds a settled trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, e *domain.TradeEvent) error {
	if e == nil || e.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.data[e.TradeID] = &eventCopy
	return nil
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeStore) GetByMint(_ context.Context, mint domain.AssetID) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.data {
		if e.Mint == mint {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortTrades(result)
	return result, nil
}

// GetByTimeRange retrieves trades for a mint within [start, end] (inclusive).
func (s *TradeStore) GetByTimeRange(_ context.Context, mint domain.AssetID, start, end int64) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.data {
		if e.Mint == mint && e.Timestamp >= start && e.Timestamp <= end {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortTrades(result)
	return result, nil
}

func sortTrades(trades []*domain.TradeEvent) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].TradeID < trades[j].TradeID
	})
}

// Verify interface compliance at compile time.
var _ storage.TradeStore = (*TradeStore)(nil)
