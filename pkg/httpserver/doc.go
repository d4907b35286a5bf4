// Package httpserver runs the funnel HTTP surface with graceful shutdown.
//
// Server applies timeouts from Config (or options), blocks in Run until the
// context is cancelled or the process receives SIGINT/SIGTERM, and drains
// in-flight requests within the shutdown timeout. Start and stop hooks let
// the caller flush resources that outlive a request, such as the session
// store or the Kafka writer.
//
// Health mounts liveness and readiness probes that answer with JSON:
//
//	r.Get("/healthz", httpserver.Health(log))
//	r.Get("/readyz", httpserver.Health(log, httpserver.Check{Name: "kafka", Fn: ping}))
//
// Run wraps listen errors with ErrStart; Shutdown wraps drain errors with
// ErrShutdown.
package httpserver
