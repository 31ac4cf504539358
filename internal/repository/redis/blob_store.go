// Package redis stores the invoice collection in Redis and serializes writers
// across processes with redislock.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"tmsbilling/internal/config"
	"tmsbilling/internal/port"
)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

type blobStore struct {
	rdb goredis.Cmdable
}

// NewBlobStore creates a Redis-backed BlobStore.
func NewBlobStore(rdb goredis.Cmdable) port.BlobStore {
	return &blobStore{rdb: rdb}
}

func (s *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, port.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis blob get: %w", err)
	}
	return data, nil
}

func (s *blobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis blob put: %w", err)
	}
	return nil
}

func (s *blobStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
