package cache

import (
	"context"
	"time"
)

// Store is the result cache shared by all concurrent requests of one
// instance. Implementations must make individual calls atomic; no cross-call
// transaction is provided or needed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every entry whose key starts with the prefix.
	// Invalidation is deliberately coarse: evicting too much after a write
	// only costs cache misses, while evicting too little serves stale reads.
	DeletePrefix(ctx context.Context, prefix string) error
}
