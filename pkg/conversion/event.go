package conversion

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// Kind names a funnel conversion event.
type Kind string

const (
	FormSubmitted         Kind = "form_submitted"
	CheckoutInitiated     Kind = "checkout_initiated"
	PaymentMethodSelected Kind = "payment_method_selected"
	Purchase              Kind = "purchase"
	DownsellShown         Kind = "downsell_shown"
	DownsellAccepted      Kind = "downsell_accepted"
)

var knownKinds = map[Kind]struct{}{
	FormSubmitted:         {},
	CheckoutInitiated:     {},
	PaymentMethodSelected: {},
	Purchase:              {},
	DownsellShown:         {},
	DownsellAccepted:      {},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// Event is the payload delivered to every sink. Fields that do not apply to a
// kind are left zero.
type Event struct {
	ID          string                  `json:"id"`
	Kind        Kind                    `json:"kind"`
	SessionID   string                  `json:"session_id"`
	Environment environment.Environment `json:"environment"`
	OccurredAt  time.Time               `json:"occurred_at"`

	Email          string   `json:"email,omitempty"`
	FirstName      string   `json:"first_name,omitempty"`
	Language       string   `json:"language,omitempty"`
	UseCases       []string `json:"use_cases,omitempty"`
	UsageFrequency string   `json:"usage_frequency,omitempty"`

	PlanKey string `json:"plan_key,omitempty"`
	PriceID string `json:"price_id,omitempty"`
	Trial   bool   `json:"trial"`

	Value         valuation.Amount  `json:"value"`
	Tax           valuation.Amount  `json:"tax"`
	Currency      string            `json:"currency,omitempty"`
	TransactionID string            `json:"transaction_id,omitempty"`
	ExpectedValue *valuation.Amount `json:"expected_value,omitempty"`

	TrialStartedOn *time.Time `json:"trial_started_on,omitempty"`
	TrialExpiresOn *time.Time `json:"trial_expires_on,omitempty"`

	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	PageURL   string `json:"page_url,omitempty"`

	OfferKey      string `json:"offer_key,omitempty"`
	OfferKind     string `json:"offer_kind,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Validate checks the fields every sink relies on.
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if strings.TrimSpace(e.SessionID) == "" {
		return ErrMissingSession
	}
	return nil
}

// ICP reports whether the event's lead belongs to the ideal customer profile.
func (e Event) ICP() bool {
	return lead.IsICP(e.UseCases)
}

// Sandbox reports whether the event comes from a sandbox session.
func (e Event) Sandbox() bool {
	return e.Environment.IsSandbox()
}

// normalize fills the id, timestamp, environment and currency when missing.
func (e Event) normalize(now time.Time) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = now.UTC()
	}
	if e.Environment == "" {
		e.Environment = environment.Production
	}
	if e.Kind == Purchase && e.Currency == "" {
		e.Currency = valuation.DefaultCurrency
	}
	return e
}
