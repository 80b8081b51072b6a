package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps settings in memory for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]any)}
}

// GetAll returns a copy of the stored mapping.
func (s *MemoryStore) GetAll(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.data), nil
}

// Set merges items into the stored mapping.
func (s *MemoryStore) Set(ctx context.Context, items map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.data, items)
	return nil
}
