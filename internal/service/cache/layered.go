package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: in-process TTLCache, L2: shared cache
// such as Redis).
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

var _ BytesCache = (*LayeredCache)(nil)

// NewLayeredCache puts a bounded memory layer in front of l2. Entries promoted from
// l2 live in memory for at most l1TTL.
func NewLayeredCache(l2 BytesCache, maxEntries int, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = time.Minute
	}
	return &LayeredCache{l1: NewTTLCache(maxEntries), l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	// L1: Try memory first
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}

	// L2
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	// Store in memory for next time
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

// SetBytes writes through: L2 first, then memory.
func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := lc.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1TTL)
}
