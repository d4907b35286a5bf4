package sink

import (
	"context"
	"strings"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/valuation"
	"github.com/dmitrymomot/funnel/pkg/webhook"
)

// PlausibleEndpoint is the hosted Plausible events API.
const PlausibleEndpoint = "https://plausible.io/api/event"

// Plausible event names.
const (
	PlausibleEventFormSubmit = "formSubmit"
	PlausibleEventPurchase   = "Purchase"
)

// Plausible records custom events with the Plausible events API.
// It is disabled when no site domain is configured.
type Plausible struct {
	httpSink
	domain string
}

// NewPlausible builds a Plausible sink for the given site domain.
func NewPlausible(domain string, opts ...Option) *Plausible {
	return &Plausible{
		httpSink: newHTTPSink("plausible", PlausibleEndpoint, opts...),
		domain:   strings.TrimSpace(domain),
	}
}

// Enabled implements conversion.Toggle.
func (p *Plausible) Enabled() bool {
	return p.domain != "" && p.httpSink.Enabled()
}

type plausibleRevenue struct {
	Amount   valuation.Amount `json:"amount"`
	Currency string           `json:"currency"`
}

type plausiblePayload struct {
	Name    string            `json:"name"`
	Domain  string            `json:"domain"`
	URL     string            `json:"url"`
	Props   map[string]any    `json:"props,omitempty"`
	Revenue *plausibleRevenue `json:"revenue,omitempty"`
}

// Report implements conversion.Sink.
func (p *Plausible) Report(ctx context.Context, ev conversion.Event) error {
	payload := plausiblePayload{
		Domain: p.domain,
		URL:    ev.PageURL,
	}
	if payload.URL == "" {
		payload.URL = "https://" + p.domain + "/"
	}

	switch ev.Kind {
	case conversion.FormSubmitted:
		payload.Name = PlausibleEventFormSubmit
		payload.Props = map[string]any{
			"use_cases":        joinUseCases(ev.UseCases),
			"estimated_volume": ev.UsageFrequency,
		}
	case conversion.Purchase:
		payload.Name = PlausibleEventPurchase
		plan := ev.PlanKey
		if plan == "" {
			plan = "unknown"
		}
		payload.Props = map[string]any{"plan": plan}
		if ev.Trial && ev.ExpectedValue != nil {
			payload.Props["expectedValue"] = *ev.ExpectedValue
		}
		payload.Revenue = &plausibleRevenue{Amount: ev.Value, Currency: ev.Currency}
	default:
		return conversion.ErrUnsupportedKind
	}

	// The events API attributes visitors by these two headers.
	var extra []webhook.SendOption
	if ev.UserAgent != "" {
		extra = append(extra, webhook.WithHeader("User-Agent", ev.UserAgent))
	}
	if ev.ClientIP != "" {
		extra = append(extra, webhook.WithHeader("X-Forwarded-For", ev.ClientIP))
	}
	return p.post(ctx, payload, extra...)
}
