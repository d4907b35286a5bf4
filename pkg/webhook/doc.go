// Package webhook delivers JSON payloads to third-party HTTP endpoints with
// retries, backoff and circuit breaking. The conversion sinks use it for the
// CRM webhook, the analytics events API and the pixel postback.
//
//	sender := webhook.NewSender()
//	breaker := webhook.NewCircuitBreaker("crm", 5, 30*time.Second)
//
//	err := sender.Send(ctx, endpoint, payload,
//	    webhook.WithHeader("Authorization", "Push "+key),
//	    webhook.WithTimeout(3*time.Second),
//	    webhook.WithCircuitBreaker(breaker),
//	)
//
// # Error classification
//
// 4xx responses other than 408, 425 and 429 are permanent and returned at once
// wrapped in ErrPermanentFailure; they do not count against the circuit. Network
// errors and 5xx responses are retried and, once attempts run out, returned
// wrapped in ErrWebhookDeliveryFailed. While the breaker is open Send fails fast
// with ErrCircuitOpen. Non-2xx answers unwrap to *StatusError, and a
// Retry-After header stretches the wait before the next attempt up to
// WithMaxRetryAfter.
//
// The breaker is github.com/sony/gobreaker/v2. Reuse one CircuitBreaker per
// endpoint so failures from every session are counted together.
package webhook
