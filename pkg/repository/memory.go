package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in memory, used for tests and for runs without a database
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryStore makes an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

// Load returns a slot value
func (m *MemoryStore) Load(_ context.Context, key string) (value string, found bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, found = m.slots[key]
	return value, found, nil
}

// Save stores a slot value
func (m *MemoryStore) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
	return nil
}
