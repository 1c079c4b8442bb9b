package memory

import (
	"context"
	"sync"

	"curve-engine/internal/domain"
	"curve-engine/internal/storage"
)

// ConfigStore is an in-memory implementation of storage.ConfigStore.
type ConfigStore struct {
	mu     sync.RWMutex
	config *domain.GlobalConfig
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Get retrieves the configuration. Returns ErrNotFound before the first Save.
func (s *ConfigStore) Get(_ context.Context) (*domain.GlobalConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	configCopy := *s.config
	return &configCopy, nil
}

// Save persists the configuration, creating or overwriting it.
func (s *ConfigStore) Save(_ context.Context, c *domain.GlobalConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	configCopy := *c
	s.config = &configCopy
	return nil
}

// Verify interface compliance at compile time.
var _ storage.ConfigStore = (*ConfigStore)(nil)
