// Package ratelimiter throttles public funnel endpoints with an in-memory
// token bucket per key, typically the client IP.
//
//	l, err := ratelimiter.New(ratelimiter.Config{Capacity: 20, RefillRate: 5, RefillInterval: time.Minute})
//	r.With(ratelimiter.Middleware(l, ratelimiter.ByClientIP, denied)).Post("/sessions", create)
//
// Every bucket starts full, loses one token per request and regains
// RefillRate tokens per elapsed RefillInterval up to Capacity. Buckets idle
// for longer than the idle TTL are pruned once the key count passes the
// prune threshold.
package ratelimiter
