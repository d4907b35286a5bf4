package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithReadTimeout: duration must be > 0")
	}
	return func(c *config) { c.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithWriteTimeout: duration must be > 0")
	}
	return func(c *config) { c.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithIdleTimeout: duration must be > 0")
	}
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout bounds how long Shutdown waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithShutdownTimeout: duration must be > 0")
	}
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger sets the server logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook registers a callback run once the listener is bound.
// The argument is the bound address.
func WithStartHook(h func(addr string)) Option {
	if h == nil {
		panic("WithStartHook: nil hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook registers a callback run after the server has drained.
func WithStopHook(h func()) Option {
	if h == nil {
		panic("WithStopHook: nil hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
