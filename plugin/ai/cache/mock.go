package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is an unbounded map cache for tests. TTLs are ignored.
// Setting Err makes every write fail.
type MockCacheService struct {
	mu    sync.Mutex
	store map[string][]byte
	Err   error

	Gets int
	Sets int
}

// NewMockCacheService creates a new MockCacheService.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		store: make(map[string][]byte),
	}
}

// Get retrieves a value from cache.
func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	v, ok := m.store[key]
	return v, ok
}

// Set stores a value in cache.
func (m *MockCacheService) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.Err != nil {
		return m.Err
	}
	m.store[key] = append([]byte(nil), value...)
	return nil
}

// Invalidate invalidates cache entries.
func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		delete(m.store, pattern)
		return m.Err
	}
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
		}
	}
	return m.Err
}

// Size returns the number of items in the cache.
func (m *MockCacheService) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// Ensure MockCacheService implements CacheService
var _ CacheService = (*MockCacheService)(nil)
