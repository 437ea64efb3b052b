// Package lock serializes critical sections keyed by name, either inside
// one process or across processes through redis.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when the lock could not be taken before ctx ended.
var ErrNotObtained = errors.New("lock not obtained")

// Locker hands out exclusive sections. release must always be called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Locker.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return func() {}, errors.Join(ErrNotObtained, ctx.Err())
	}
}

// Redis is a Locker shared by every process pointed at the same redis.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(ttl/(100*time.Millisecond))),
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	l, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return func() {}, ErrNotObtained
	}
	if err != nil {
		return func() {}, err
	}
	return func() { _ = l.Release(context.Background()) }, nil
}
