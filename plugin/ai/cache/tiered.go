package cache

import (
	"context"
	"log/slog"
	"time"
)

// TieredCache reads through L1 then L2 and writes both.
// A nil L2 degrades to L1 only.
type TieredCache struct {
	l1 CacheService
	l2 CacheService
}

// NewTieredCache combines a local and a shared cache.
func NewTieredCache(l1, l2 CacheService) *TieredCache {
	return &TieredCache{l1: l1, l2: l2}
}

// Get looks in L1 first and backfills it from L2 on an L2 hit.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.l1.Get(ctx, key); ok {
		return v, true
	}
	if t.l2 == nil {
		return nil, false
	}

	v, ok := t.l2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	if err := t.l1.Set(ctx, key, v, 0); err != nil {
		slog.Debug("failed to backfill l1", "key", key, "error", err)
	}
	return v, true
}

// Set writes L1 and L2. An L2 failure is logged, not returned.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if t.l2 != nil {
		if err := t.l2.Set(ctx, key, value, ttl); err != nil {
			slog.Warn("failed to write l2 cache", "key", key, "error", err)
		}
	}
	return nil
}

// Invalidate removes the pattern from both tiers.
func (t *TieredCache) Invalidate(ctx context.Context, pattern string) error {
	if err := t.l1.Invalidate(ctx, pattern); err != nil {
		return err
	}
	if t.l2 != nil {
		if err := t.l2.Invalidate(ctx, pattern); err != nil {
			slog.Warn("failed to invalidate l2 cache", "pattern", pattern, "error", err)
		}
	}
	return nil
}

// Ensure TieredCache implements CacheService
var _ CacheService = (*TieredCache)(nil)
