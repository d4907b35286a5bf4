package sink

import (
	"context"

	"github.com/dmitrymomot/funnel/pkg/conversion"
)

// Pixel event names.
const (
	PixelEventFormSubmit = "FormSubmit"
	PixelEventPurchase   = "Purchase"
)

// Pixel posts AnyTrack-style conversion postbacks used for ad attribution.
// Register it as conversion.RevenueRelevant and conversion.SuppressInSandbox.
type Pixel struct {
	httpSink
}

// NewPixel builds a pixel postback sink.
func NewPixel(endpoint string, opts ...Option) *Pixel {
	return &Pixel{httpSink: newHTTPSink("pixel", endpoint, opts...)}
}

type pixelPayload struct {
	Event     string         `json:"event"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data"`
}

// Report implements conversion.Sink.
func (p *Pixel) Report(ctx context.Context, ev conversion.Event) error {
	payload := pixelPayload{SessionID: ev.SessionID}

	switch ev.Kind {
	case conversion.FormSubmitted:
		payload.Event = PixelEventFormSubmit
		payload.Data = map[string]any{
			"use_cases":        joinUseCases(ev.UseCases),
			"estimated_volume": ev.UsageFrequency,
		}
	case conversion.Purchase:
		payload.Event = PixelEventPurchase
		payload.Data = map[string]any{
			"value":         ev.Value,
			"taxPrice":      ev.Tax,
			"currency":      ev.Currency,
			"transactionId": ev.TransactionID,
			"email":         ev.Email,
			"firstName":     ev.FirstName,
		}
	default:
		return conversion.ErrUnsupportedKind
	}
	return p.post(ctx, payload)
}
