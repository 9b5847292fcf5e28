package clientcache

import (
	"context"
	"sync"
)

// BlobStore persists one serialized family per key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// MemoryBlobStore keeps blobs in process. Nothing survives a restart.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.blobs[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) Clear(context.Context) error {
	m.mu.Lock()
	m.blobs = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) Close() error { return nil }
