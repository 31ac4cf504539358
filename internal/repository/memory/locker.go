package memory

import (
	"context"
	"sync"
	"time"

	"tmsbilling/internal/port"
)

// Locker is an in-process Locker with one slot per key. The ttl is ignored.
type Locker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocker creates a Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]chan struct{})}
}

func (l *Locker) Obtain(ctx context.Context, key string, _ time.Duration) (port.Lock, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return &lock{ch: ch}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Locker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

type lock struct {
	once sync.Once
	ch   chan struct{}
}

func (l *lock) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}
