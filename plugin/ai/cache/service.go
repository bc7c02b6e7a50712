package cache

import (
	"context"
	"log/slog"
	"time"
)

// ServiceConfig configures the in-process cache.
type ServiceConfig struct {
	Capacity        int           // Maximum number of entries (default: 1000)
	DefaultTTL      time.Duration // Default TTL for entries (default: 5 minutes)
	CleanupInterval time.Duration // Interval for expired entry cleanup (default: 1 minute)
}

// DefaultServiceConfig returns default cache service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Capacity:        1000,
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Service implements CacheService over an LRUCache.
type Service struct {
	lru             *LRUCache
	cleanupInterval time.Duration
}

// NewService creates a new cache service. Expired entries are swept only
// while Run is active; Get never returns them either way.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	return &Service{
		lru:             NewLRUCache(cfg.Capacity, cfg.DefaultTTL),
		cleanupInterval: cfg.CleanupInterval,
	}
}

// Get retrieves a value from cache.
func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.lru.Get(key)
}

// Set stores a value in cache.
func (s *Service) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Set(key, value, ttl)
	return nil
}

// Invalidate invalidates cache entries matching the pattern.
func (s *Service) Invalidate(_ context.Context, pattern string) error {
	s.lru.Invalidate(pattern)
	return nil
}

// Stats returns the cache counters.
func (s *Service) Stats() Stats {
	return s.lru.Stats()
}

// Run sweeps expired entries until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.lru.CleanupExpired(); n > 0 {
				slog.Debug("cache cleanup", "removed", n)
			}
		}
	}
}

// Ensure Service implements CacheService
var _ CacheService = (*Service)(nil)
