package funnel

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/funnel/pkg/cache"
)

// Store keeps sessions by id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Store defaults.
const (
	DefaultStoreCapacity   = 100_000
	DefaultSessionIdleTTL  = 2 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// MemoryStore keeps sessions in a bounded LRU with idle expiry.
type MemoryStore struct {
	sessions  *cache.LRUCache[string, *Session]
	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// StoreOption configures a MemoryStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	capacity int
	ttl      time.Duration
	cleanup  time.Duration
	now      func() time.Time
}

// WithCapacity bounds the number of live sessions.
func WithCapacity(n int) StoreOption {
	return func(c *storeConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithIdleTTL sets how long an untouched session lives.
func WithIdleTTL(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCleanupInterval sets how often expired sessions are pruned. Zero disables the loop.
func WithCleanupInterval(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.cleanup = d
	}
}

// WithStoreClock overrides the time source for expiry.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryStore creates an in-memory store. Call Close to stop its cleanup loop.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	cfg := storeConfig{
		capacity: DefaultStoreCapacity,
		ttl:      DefaultSessionIdleTTL,
		cleanup:  DefaultCleanupInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &MemoryStore{
		sessions: cache.NewLRUCache[string, *Session](cfg.capacity,
			cache.WithIdleTTL(cfg.ttl),
			cache.WithClock(cfg.now),
		),
		done: make(chan struct{}),
	}
	if cfg.cleanup > 0 {
		m.ticker = time.NewTicker(cfg.cleanup)
		go m.cleanupLoop()
	}
	return m
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.id == "" {
		return ErrSessionNotFound
	}
	m.sessions.Put(s.id, s)
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.sessions.Remove(id)
	return nil
}

// Len returns the number of stored sessions, expired ones included until pruned.
func (m *MemoryStore) Len() int { return m.sessions.Len() }

// Prune drops expired sessions.
func (m *MemoryStore) Prune() int { return m.sessions.Prune() }

// Close stops the cleanup loop.
func (m *MemoryStore) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.ticker != nil {
			m.ticker.Stop()
		}
	})
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.sessions.Prune()
		case <-m.done:
			return
		}
	}
}
