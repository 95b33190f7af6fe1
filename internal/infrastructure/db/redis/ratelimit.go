package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore backs the rate limiter with shared Redis counters, so the same
// window semantics hold across replicas. Key format: ratelimit:<class>:<ip>.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore wraps the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Incr bumps the fixed-window counter for key. The expiry is attached on the
// first hit of a window; INCR and EXPIRE run in one pipeline round-trip.
func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	rkey := "ratelimit:" + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.ExpireNX(ctx, rkey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}
