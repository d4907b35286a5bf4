package sink

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/funnel/pkg/webhook"
)

// Option configures an HTTP sink.
type Option func(*httpSink)

// WithName overrides the sink name used in logs and dispatch results.
func WithName(name string) Option {
	return func(s *httpSink) {
		if name = strings.TrimSpace(name); name != "" {
			s.name = name
		}
	}
}

// WithEndpoint overrides the sink endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *httpSink) {
		s.endpoint = strings.TrimSpace(endpoint)
	}
}

// WithSender sets the webhook sender. Sinks can share one sender.
func WithSender(sender *webhook.Sender) Option {
	return func(s *httpSink) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithSendOptions appends webhook options applied to every delivery.
func WithSendOptions(opts ...webhook.SendOption) Option {
	return func(s *httpSink) {
		s.sendOpts = append(s.sendOpts, opts...)
	}
}

// WithCircuitBreaker trips the sink after threshold consecutive failed
// deliveries and probes again after recovery.
func WithCircuitBreaker(threshold int, recovery time.Duration, opts ...webhook.CircuitOption) Option {
	return func(s *httpSink) {
		s.breaker = &breakerSpec{threshold: threshold, recovery: recovery, opts: opts}
	}
}

type breakerSpec struct {
	threshold int
	recovery  time.Duration
	opts      []webhook.CircuitOption
}

// httpSink holds what every HTTP sink shares.
type httpSink struct {
	name     string
	endpoint string
	sender   *webhook.Sender
	sendOpts []webhook.SendOption
	breaker  *breakerSpec
}

func newHTTPSink(name, endpoint string, opts ...Option) httpSink {
	s := httpSink{
		name:     name,
		endpoint: strings.TrimSpace(endpoint),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.sender == nil {
		s.sender = webhook.NewSender()
	}
	if s.breaker != nil {
		cb := webhook.NewCircuitBreaker(s.name, s.breaker.threshold, s.breaker.recovery, s.breaker.opts...)
		s.sendOpts = append(s.sendOpts, webhook.WithCircuitBreaker(cb))
		s.breaker = nil
	}
	return s
}

func (s *httpSink) Name() string { return s.name }

// Enabled reports whether the sink has an endpoint.
func (s *httpSink) Enabled() bool { return s.endpoint != "" }

func (s *httpSink) post(ctx context.Context, payload any, extra ...webhook.SendOption) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	opts := make([]webhook.SendOption, 0, len(s.sendOpts)+len(extra))
	opts = append(opts, s.sendOpts...)
	opts = append(opts, extra...)
	return s.sender.Send(ctx, s.endpoint, payload, opts...)
}

func joinUseCases(useCases []string) string {
	return strings.Join(useCases, ",")
}
