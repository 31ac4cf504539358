package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/port"
)

type locker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

// NewLocker creates a distributed Locker. Obtain retries with a linear
// backoff until the context deadline.
func NewLocker(client redislock.RedisClient) port.Locker {
	return &locker{
		client: redislock.New(client),
		retry:  redislock.LinearBackoff(50 * time.Millisecond),
	}
}

func (l *locker) Obtain(ctx context.Context, key string, ttl time.Duration) (port.Lock, error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock obtain: %w", err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
