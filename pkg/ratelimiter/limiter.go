package ratelimiter

import (
	"fmt"
	"sync"
	"time"
)

// Config defines the token bucket.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"30"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"10"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	now       time.Time
}

// Allowed reports whether the request fits in the bucket.
func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIdleTTL sets how long an untouched bucket survives pruning. Default 1h.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// WithPruneThreshold sets the key count above which idle buckets are pruned. Default 10000.
func WithPruneThreshold(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.pruneAt = n
		}
	}
}

// Limiter is a keyed token bucket. It is safe for concurrent use.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	idleTTL time.Duration
	pruneAt int

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New creates a Limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		idleTTL: time.Hour,
		pruneAt: 10000,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) Result {
	res, _ := l.AllowN(key, 1)
	return res
}

// AllowN consumes n tokens for key. A denied request still drains the bucket
// so sustained bursts stay throttled.
func (l *Limiter) AllowN(key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	return l.consume(key, n), nil
}

// Status reports the bucket for key without consuming a token.
func (l *Limiter) Status(key string) Result {
	return l.consume(key, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Prune drops buckets idle for longer than the idle TTL and returns how many were removed.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneLocked(l.now())
}

func (l *Limiter) pruneLocked(now time.Time) int {
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.idleTTL {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) consume(key string, n int) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.pruneAt {
			l.pruneLocked(now)
		}
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}

	// Cap intervals so a long idle period cannot overflow the token count.
	maxIntervals := int64(l.cfg.Capacity/l.cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/l.cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*l.cfg.RefillRate, l.cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * l.cfg.RefillInterval)
		if intervals == int(maxIntervals) {
			b.lastRefill = now
		}
	}

	b.tokens -= n
	b.lastAccess = now

	return Result{
		Limit:     l.cfg.Capacity,
		Remaining: b.tokens,
		ResetAt:   b.lastRefill.Add(l.cfg.RefillInterval),
		now:       now,
	}
}
