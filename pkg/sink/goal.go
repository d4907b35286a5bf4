package sink

import (
	"context"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// Default goal identifiers of the heatmap account.
const (
	PurchaseGoalID   = "f2ff5947-c667-49a1-85fd-210cdf91be10"
	FormSubmitGoalID = "ff76d55c-95cf-4be9-99a9-ef655b436cf9"
)

// Goals posts CrazyEgg-style goal conversions. Purchases carry a worth.
type Goals struct {
	httpSink
	purchaseGoal   string
	formSubmitGoal string
}

// NewGoals builds a goal conversion sink with the default goal ids.
func NewGoals(endpoint string, opts ...Option) *Goals {
	return &Goals{
		httpSink:       newHTTPSink("goals", endpoint, opts...),
		purchaseGoal:   PurchaseGoalID,
		formSubmitGoal: FormSubmitGoalID,
	}
}

// WithGoalIDs overrides the purchase and form-submit goal ids. Empty values keep the defaults.
func (g *Goals) WithGoalIDs(purchase, formSubmit string) *Goals {
	if purchase != "" {
		g.purchaseGoal = purchase
	}
	if formSubmit != "" {
		g.formSubmitGoal = formSubmit
	}
	return g
}

type goalPayload struct {
	GoalID    string `json:"goal_id"`
	SessionID string `json:"session_id"`
	Worth     string `json:"worth,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// Report implements conversion.Sink.
func (g *Goals) Report(ctx context.Context, ev conversion.Event) error {
	payload := goalPayload{SessionID: ev.SessionID}
	switch ev.Kind {
	case conversion.FormSubmitted:
		payload.GoalID = g.formSubmitGoal
	case conversion.Purchase:
		payload.GoalID = g.purchaseGoal
		payload.Worth = Worth(ev).String()
		payload.Currency = ev.Currency
		if payload.Currency == "" {
			payload.Currency = valuation.DefaultCurrency
		}
	default:
		return conversion.ErrUnsupportedKind
	}
	return g.post(ctx, payload)
}

// Worth is the goal value of a purchase: the expected value for trials,
// otherwise the charged total, or the nominal value when nothing was charged.
func Worth(ev conversion.Event) valuation.Amount {
	if ev.Trial {
		if ev.ExpectedValue != nil {
			return *ev.ExpectedValue
		}
		return ev.Value
	}
	if ev.Value > 0 {
		return ev.Value
	}
	return valuation.NominalValue
}
