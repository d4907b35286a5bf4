package checkout

import (
	"context"
)

// DisplayMode is how the hosted checkout renders.
type DisplayMode string

const (
	DisplayOverlay DisplayMode = "overlay"
	DisplayInline  DisplayMode = "inline"
)

// Display holds the checkout presentation settings.
type Display struct {
	Mode   DisplayMode `json:"displayMode"`
	Theme  string      `json:"theme"`
	Locale string      `json:"locale"`
}

// DefaultDisplay is a light overlay in the given two-letter locale.
func DefaultDisplay(locale string) Display {
	return Display{Mode: DisplayOverlay, Theme: "light", Locale: locale}
}

// OpenRequest describes a checkout to open.
type OpenRequest struct {
	SessionID     string
	PriceID       string
	PlanKey       string
	Quantity      int
	CustomerEmail string
	Display       Display
	SuccessURL    string
	Referral      string
	CustomData    map[string]any
}

// Session is an opened checkout. The browser overlay is driven by the
// transaction id; URL is the hosted fallback.
type Session struct {
	TransactionID string  `json:"transaction_id"`
	URL           string  `json:"url,omitempty"`
	PriceID       string  `json:"price_id"`
	Display       Display `json:"settings"`
	SuccessURL    string  `json:"success_url"`
}

// Gateway opens hosted checkouts.
type Gateway interface {
	Open(ctx context.Context, req OpenRequest) (*Session, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, req OpenRequest) (*Session, error)

// Open implements Gateway.
func (f GatewayFunc) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	return f(ctx, req)
}

// customData merges the request custom data with the funnel identifiers.
// The referral travels under "rewardful" as the affiliate tracker expects.
func (r OpenRequest) customData() map[string]any {
	data := make(map[string]any, len(r.CustomData)+4)
	for k, v := range r.CustomData {
		data[k] = v
	}
	if r.SessionID != "" {
		data["session_id"] = r.SessionID
	}
	if r.CustomerEmail != "" {
		data["email"] = r.CustomerEmail
	}
	if r.PlanKey != "" {
		data["plan_key"] = r.PlanKey
	}
	if r.Referral != "" {
		data["rewardful"] = map[string]any{"referral": r.Referral}
	}
	return data
}
