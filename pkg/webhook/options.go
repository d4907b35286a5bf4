package webhook

import "time"

// DeliveryResult describes one delivery attempt.
type DeliveryResult struct {
	Success    bool
	StatusCode int
	Attempt    int
	Duration   time.Duration
	Error      error
}

// DeliveryHook is called after each delivery attempt.
type DeliveryHook func(result DeliveryResult)

type sendOptions struct {
	timeout time.Duration
	headers map[string]string

	maxRetries      int
	backoffStrategy BackoffStrategy
	maxRetryAfter   time.Duration

	circuitBreaker *CircuitBreaker

	onDelivery DeliveryHook
}

func defaultSendOptions() *sendOptions {
	return &sendOptions{
		timeout:         5 * time.Second,
		headers:         make(map[string]string),
		maxRetries:      2,
		backoffStrategy: DefaultBackoffStrategy(),
		maxRetryAfter:   5 * time.Second,
	}
}

// SendOption configures a single Send call.
type SendOption func(*sendOptions)

// WithTimeout sets the per-attempt request timeout. Default is 5 seconds.
func WithTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeader adds a request header. Content-Type is always application/json.
func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt. Default is 2.
func WithMaxRetries(n int) SendOption {
	return func(o *sendOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxRetryAfter caps the wait between attempts, including server-requested
// Retry-After delays. Default is 5 seconds.
func WithMaxRetryAfter(d time.Duration) SendOption {
	return func(o *sendOptions) {
		if d >= 0 {
			o.maxRetryAfter = d
		}
	}
}

func WithBackoff(strategy BackoffStrategy) SendOption {
	return func(o *sendOptions) {
		if strategy != nil {
			o.backoffStrategy = strategy
		}
	}
}

// WithCircuitBreaker routes every attempt through cb.
func WithCircuitBreaker(cb *CircuitBreaker) SendOption {
	return func(o *sendOptions) {
		o.circuitBreaker = cb
	}
}

// WithOnDelivery sets a callback invoked after each attempt.
func WithOnDelivery(hook DeliveryHook) SendOption {
	return func(o *sendOptions) {
		o.onDelivery = hook
	}
}

// WithBasicRetry retries attempts times with a fixed interval.
func WithBasicRetry(attempts int, interval time.Duration) SendOption {
	return func(o *sendOptions) {
		o.maxRetries = attempts
		o.backoffStrategy = FixedBackoff{Interval: interval}
	}
}

func WithNoRetry() SendOption {
	return func(o *sendOptions) {
		o.maxRetries = 0
	}
}
