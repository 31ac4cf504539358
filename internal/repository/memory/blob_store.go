// Package memory holds process-local adapters: a map-backed blob store and a
// mutex locker.
package memory

import (
	"context"
	"sync"

	"tmsbilling/internal/port"
)

// BlobStore keeps blobs in a map. The zero value is not usable; call NewBlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty in-memory BlobStore.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (s *BlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, port.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *BlobStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *BlobStore) Ping(context.Context) error { return nil }
