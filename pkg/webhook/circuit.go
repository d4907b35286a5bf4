package webhook

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker stops deliveries to an endpoint after consecutive failures and
// probes it again after a recovery timeout. Share one instance per endpoint.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[DeliveryResult]
}

// CircuitOption tunes a CircuitBreaker.
type CircuitOption func(*gobreaker.Settings)

// WithStateChange registers a callback for breaker state changes.
func WithStateChange(fn func(name, from, to string)) CircuitOption {
	return func(s *gobreaker.Settings) {
		if fn == nil {
			return
		}
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			fn(name, from.String(), to.String())
		}
	}
}

// WithProbeRequests sets how many requests may pass while half-open.
func WithProbeRequests(n uint32) CircuitOption {
	return func(s *gobreaker.Settings) {
		if n > 0 {
			s.MaxRequests = n
		}
	}
}

// NewCircuitBreaker opens after failureThreshold consecutive failed attempts and
// stays open for recoveryTimeout. Non-positive values fall back to 5 and 30s.
// Permanent failures (rejected requests) do not count against the endpoint.
func NewCircuitBreaker(name string, failureThreshold int, recoveryTimeout time.Duration, opts ...CircuitOption) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = 30 * time.Second
	}
	threshold := uint32(failureThreshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     recoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPermanentFailure)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[DeliveryResult](settings)}
}

// Name returns the breaker name, usually the sink it protects.
func (c *CircuitBreaker) Name() string { return c.cb.Name() }

// State returns "closed", "half-open" or "open".
func (c *CircuitBreaker) State() string { return c.cb.State().String() }

func (c *CircuitBreaker) execute(attempt func() (DeliveryResult, error)) (DeliveryResult, error) {
	res, err := c.cb.Execute(attempt)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return res, errors.Join(ErrCircuitOpen, err)
	}
	return res, err
}
