package conversion

import (
	"context"
)

// Sink delivers events to one third-party service.
type Sink interface {
	Name() string
	Report(ctx context.Context, ev Event) error
}

// Toggle is implemented by sinks that can be configured off, for example an
// analytics sink without a site id. Disabled sinks are skipped.
type Toggle interface {
	Enabled() bool
}

// Trait describes how the reporter treats a sink.
type Trait uint8

const (
	// RevenueRelevant sinks skip FormSubmitted events from non-ICP leads.
	RevenueRelevant Trait = 1 << iota
	// SuppressInSandbox sinks skip sandbox sessions.
	SuppressInSandbox
	// Acknowledged sinks are awaited by Dispatch.Wait.
	Acknowledged
)

// Has reports whether t includes other.
func (t Trait) Has(other Trait) bool { return t&other == other }

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, ev Event) error
}

func (f SinkFunc) Name() string { return f.SinkName }

func (f SinkFunc) Report(ctx context.Context, ev Event) error { return f.Fn(ctx, ev) }

type registration struct {
	sink   Sink
	traits Trait
}

// SkipReason explains why a sink did not receive an event.
type SkipReason string

const (
	SkipNotICP    SkipReason = "not_icp"
	SkipSandbox   SkipReason = "sandbox"
	SkipDisabled  SkipReason = "disabled"
	SkipUnhandled SkipReason = "unsupported_kind"
)

// skipReason applies the suppression rules.
func (r registration) skipReason(ev Event) (SkipReason, bool) {
	if t, ok := r.sink.(Toggle); ok && !t.Enabled() {
		return SkipDisabled, true
	}
	if r.traits.Has(SuppressInSandbox) && ev.Sandbox() {
		return SkipSandbox, true
	}
	if r.traits.Has(RevenueRelevant) && ev.Kind == FormSubmitted && !ev.ICP() {
		return SkipNotICP, true
	}
	return "", false
}
