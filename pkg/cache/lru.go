package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key     K
	value   V
	touched time.Time
}

// Option configures an LRUCache.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithIdleTTL expires entries not read or written for d. Zero disables expiry.
func WithIdleTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// LRUCache is a thread-safe LRU cache with optional idle expiry.
// When the cache reaches its capacity, the least recently used item is evicted.
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key K, value V)
}

// NewLRUCache creates a cache holding at most capacity items.
// The capacity must be positive, otherwise it panics.
func NewLRUCache[K comparable, V any](capacity int, opts ...Option) *LRUCache[K, V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		ttl:      o.ttl,
		now:      o.now,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
}

// SetEvictCallback sets a callback called for every evicted, expired or removed item.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get retrieves a value and marks it as recently used.
// Expired items are removed and reported as missing.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*lruEntry[K, V])
	now := c.now()
	if c.expired(entry, now) {
		c.removeElement(elem)
		return zero, false
	}
	entry.touched = now
	c.eviction.MoveToFront(elem)
	return entry.value, true
}

// Put adds or updates a value. Returns the previous value if it existed.
func (c *LRUCache[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[K, V])
		oldValue := entry.value
		entry.value = value
		entry.touched = now
		return oldValue, true
	}

	entry := &lruEntry[K, V]{key: key, value: value, touched: now}
	c.items[key] = c.eviction.PushFront(entry)

	if c.eviction.Len() > c.capacity {
		c.evictOldest()
	}

	var zero V
	return zero, false
}

// Remove removes an item. Returns the removed value if it existed.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
		entry := elem.Value.(*lruEntry[K, V])
		return entry.value, true
	}

	var zero V
	return zero, false
}

// Prune removes expired items and returns how many were removed.
func (c *LRUCache[K, V]) Prune() int {
	if c.ttl == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	// The list is ordered by recency, so expired entries sit at the back.
	for elem := c.eviction.Back(); elem != nil; {
		entry := elem.Value.(*lruEntry[K, V])
		if !c.expired(entry, now) {
			break
		}
		prev := elem.Prev()
		c.removeElement(elem)
		removed++
		elem = prev
	}
	return removed
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Clear removes all items, calling the evict callback for each.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for _, elem := range c.items {
			entry := elem.Value.(*lruEntry[K, V])
			c.onEvict(entry.key, entry.value)
		}
	}

	c.items = make(map[K]*list.Element)
	c.eviction.Init()
}

func (c *LRUCache[K, V]) expired(e *lruEntry[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.touched) >= c.ttl
}

// Must be called with lock held.
func (c *LRUCache[K, V]) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// Must be called with lock held.
func (c *LRUCache[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)

	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value)
	}
}
