package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/funnel/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLRUCache_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)

	val, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	old, existed := c.Put("a", 10)
	assert.True(t, existed)
	assert.Equal(t, 1, old)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](3)
	evicted := map[string]int{}
	c.SetEvictCallback(func(k string, v int) { evicted[k] = v })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")
	c.Put("d", 4)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, 2, evicted["b"])

	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)

	val, ok := c.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	_, ok = c.Remove("a")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestLRUCache_PanicsOnInvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	assert.Panics(t, func() { cache.NewLRUCache[string, int](-1) })
}

func TestLRUCache_IdleTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.NewLRUCache[string, int](10,
		cache.WithIdleTTL(time.Hour),
		cache.WithClock(clock.Now),
	)

	expired := []string{}
	c.SetEvictCallback(func(k string, _ int) { expired = append(expired, k) })

	c.Put("idle", 1)
	c.Put("active", 2)

	clock.Advance(40 * time.Minute)
	_, ok := c.Get("active")
	assert.True(t, ok)

	clock.Advance(30 * time.Minute)

	_, ok = c.Get("idle")
	assert.False(t, ok, "idle entry should have expired")
	assert.Equal(t, []string{"idle"}, expired)

	_, ok = c.Get("active")
	assert.True(t, ok, "reads refresh the idle timer")
}

func TestLRUCache_Prune(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.NewLRUCache[string, int](10,
		cache.WithIdleTTL(time.Minute),
		cache.WithClock(clock.Now),
	)

	c.Put("a", 1)
	c.Put("b", 2)
	clock.Advance(2 * time.Minute)
	c.Put("c", 3)

	assert.Equal(t, 2, c.Prune())
	assert.Equal(t, 1, c.Len())
	assert.Zero(t, c.Prune())
}

func TestLRUCache_PruneWithoutTTL(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](2)
	c.Put("a", 1)
	assert.Zero(t, c.Prune())
	assert.Equal(t, 1, c.Len())
}

func TestLRUCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[int, int](50, cache.WithIdleTTL(time.Hour))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			c.Put(v, v*2)
			c.Get(v)
			if v%3 == 0 {
				c.Remove(v)
			}
			c.Prune()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
