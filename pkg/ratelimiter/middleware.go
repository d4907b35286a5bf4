package ratelimiter

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/funnel/pkg/visitor"
)

const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key bypasses the limiter.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by the resolved client address.
func ByClientIP(r *http.Request) string { return visitor.ClientIP(r) }

// ByRoute keys requests by method and route path.
func ByRoute(r *http.Request) string { return r.Method + " " + r.URL.Path }

// Composite joins the non-empty keys of fns. Keys longer than 64 bytes are hashed with FNV-1a.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// Middleware throttles requests per key. Denied requests get rate limit
// headers, Retry-After and the denied handler (plain 429 when nil).
func Middleware(l *Limiter, key KeyFunc, denied http.Handler) func(http.Handler) http.Handler {
	if denied == nil {
		denied = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if l == nil || k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Allow(k)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				if secs := int(res.RetryAfter().Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				denied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
