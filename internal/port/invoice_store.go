package port

import (
	"context"
	"errors"
	"time"

	"tmsbilling/internal/domain"
)

// ErrBlobNotFound is returned by BlobStore.Get when nothing is stored under key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a durable key-value mapping from a store key to an opaque blob.
// Backends only move bytes; decoding lives in the invoice store.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}

// InvoiceStore loads and rewrites the whole invoice collection.
// Load never fails on missing or corrupt data: both yield an empty store.
type InvoiceStore interface {
	Load(ctx context.Context) (*domain.Store, error)
	Save(ctx context.Context, store *domain.Store) error
}

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes read-modify-write cycles on a store key.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
