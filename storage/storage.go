// Package storage holds the key-value backends a cart is persisted to.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Returned when no value is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is scoped key-value storage: read a blob at startup, write it on every change.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStorage keeps blobs in process memory. It is safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	blob := make([]byte, len(value))
	copy(blob, value)

	m.mu.Lock()
	m.blobs[key] = blob
	m.mu.Unlock()
	return nil
}
