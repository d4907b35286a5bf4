// Package visitor attaches per-request visitor metadata to the request
// context: a correlation id, the client IP behind proxies, the user agent and
// the affiliate referral carried on the landing URL.
//
// Mount Middleware early so handlers and log records see the same values:
//
//	r := chi.NewRouter()
//	r.Use(visitor.Middleware)
//
//	log := logger.New(logger.WithContextExtractors(visitor.LoggerExtractor()))
//
// Incoming X-Request-ID values are reused when they are short and made of
// [a-zA-Z0-9_-]; anything else is replaced with a fresh UUID.
package visitor
