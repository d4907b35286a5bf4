// Package sink implements conversion.Sink for the third-party services the
// funnel reports to.
//
//   - CRM posts lead and purchase events to a UserList-style tracking endpoint.
//   - Plausible posts custom events with revenue to the Plausible events API.
//   - Pixel posts AnyTrack-style FormSubmit and Purchase postbacks.
//   - Goals posts CrazyEgg-style goal conversions with a worth.
//   - Kafka publishes every event to a topic keyed by session id.
//   - Log writes every event to a slog logger.
//
// HTTP sinks deliver through pkg/webhook and may share a circuit breaker per
// sink. A sink without an endpoint reports itself disabled and the reporter
// skips it. Kinds a sink does not map return conversion.ErrUnsupportedKind.
package sink
