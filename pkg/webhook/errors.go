package webhook

import "errors"

var (
	ErrWebhookDeliveryFailed = errors.New("webhook delivery failed")
	ErrPermanentFailure      = errors.New("permanent webhook failure")
	ErrTemporaryFailure      = errors.New("temporary webhook failure")
	ErrCircuitOpen           = errors.New("webhook circuit breaker is open")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
	ErrInvalidURL            = errors.New("invalid webhook URL")
	ErrTimeout               = errors.New("webhook request timeout")
)

// IsCircuitOpen checks if an error indicates the circuit breaker is open.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
