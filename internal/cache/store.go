package cache

import (
	"context"
	"time"
)

// Store is the shared cache surface used for response caching and
// rate-limit counters. Implementations must be safe for concurrent use.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
