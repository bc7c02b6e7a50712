package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLRU(capacity int) (*LRUCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)}
	c := NewLRUCache(capacity, time.Minute)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestLRU(10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", []byte("1"), 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	// Returned values are copies.
	v[0] = 'x'
	v, _ = c.Get("a")
	assert.Equal(t, []byte("1"), v)

	c.Set("a", []byte("2"), 0)
	v, _ = c.Get("a")
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestLRU(2)

	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	_, _ = c.Get("a") // a is now most recent
	c.Set("c", []byte("3"), 0)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestLRU(10)

	c.Set("short", []byte("1"), 10*time.Second)
	c.Set("default", []byte("2"), 0)

	clock.advance(10 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok, "entry expires at its deadline")
	_, ok = c.Get("default")
	assert.True(t, ok)

	clock.advance(time.Minute)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_Invalidate(t *testing.T) {
	c, _ := newTestLRU(10)
	c.Set("session:1", []byte("a"), 0)
	c.Set("session:2", []byte("b"), 0)
	c.Set("other", []byte("c"), 0)

	assert.Equal(t, 1, c.Invalidate("session:1"))
	assert.Equal(t, 0, c.Invalidate("session:1"))
	assert.Equal(t, 1, c.Invalidate("session:*"))
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_Stats(t *testing.T) {
	c, _ := newTestLRU(10)
	c.Set("a", []byte("1"), 0)
	_, _ = c.Get("a")
	_, _ = c.Get("b")

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Size)
}
