package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9" // Redis client
)

// Limiter is a fixed-window failure counter backed by Redis, so the limit
// holds across instances. Keys expire after the lockout window.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// New creates a limiter allowing max failures per window for each key.
func New(rdb *redis.Client, prefix string, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, max: int64(max), window: window}
}

// Blocked reports whether key has exhausted its failure budget.
func (l *Limiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Get(ctx, l.prefix+key).Int64()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *Limiter) Fail(ctx context.Context, key string) error {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return l.rdb.Expire(ctx, k, l.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful attempt.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+key).Err()
}

// Retry returns how long the key stays blocked.
func (l *Limiter) Retry(ctx context.Context, key string) time.Duration {
	ttl, err := l.rdb.TTL(ctx, l.prefix+key).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}
