package sink

import (
	"context"
	"time"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/webhook"
)

// CRM event names.
const (
	CRMEventFormSubmit = "formSubmit"
	CRMEventPurchase   = "Purchase"
)

// CRM posts lead events to a UserList-style tracking endpoint. The request
// creates or updates the user and records the event in one call:
//
//	{"name": "formSubmit", "user": {"email": ..., "properties": {...}}, "properties": {...}}
//
// Register it as conversion.Acknowledged so checkout waits for the lead to land.
type CRM struct {
	httpSink
	pushKey string
}

// NewCRM builds a CRM sink. A non-empty pushKey is sent as "Authorization: Push <key>".
func NewCRM(endpoint, pushKey string, opts ...Option) *CRM {
	return &CRM{
		httpSink: newHTTPSink("crm", endpoint, opts...),
		pushKey:  pushKey,
	}
}

type crmUser struct {
	Email      string         `json:"email"`
	Properties map[string]any `json:"properties"`
}

type crmPayload struct {
	Name       string         `json:"name"`
	User       crmUser        `json:"user"`
	Properties map[string]any `json:"properties"`
}

// Report implements conversion.Sink.
func (c *CRM) Report(ctx context.Context, ev conversion.Event) error {
	payload, ok := crmPayloadFor(ev)
	if !ok {
		return conversion.ErrUnsupportedKind
	}
	var extra []webhook.SendOption
	if c.pushKey != "" {
		extra = append(extra, webhook.WithHeader("Authorization", "Push "+c.pushKey))
	}
	return c.post(ctx, payload, extra...)
}

func crmPayloadFor(ev conversion.Event) (crmPayload, bool) {
	props := map[string]any{}
	var name string

	switch ev.Kind {
	case conversion.FormSubmitted:
		name = CRMEventFormSubmit
	case conversion.Purchase:
		name = CRMEventPurchase
		props["value"] = ev.Value
		props["taxPrice"] = ev.Tax
		props["currency"] = ev.Currency
		props["transactionId"] = ev.TransactionID
		props["email"] = ev.Email
		props["firstName"] = ev.FirstName
		if ev.Trial {
			if ev.ExpectedValue != nil {
				props["expectedValue"] = *ev.ExpectedValue
			}
			if ev.TrialStartedOn != nil {
				props["trial_started_on"] = ev.TrialStartedOn.UTC().Format(time.RFC3339Nano)
			}
			if ev.TrialExpiresOn != nil {
				props["trial_expires_on"] = ev.TrialExpiresOn.UTC().Format(time.RFC3339Nano)
			}
		}
	default:
		return crmPayload{}, false
	}

	lang := ev.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	user := map[string]any{
		"first_name": ev.FirstName,
		"language":   i18n.TwoLetter(lang),
	}
	if len(ev.UseCases) > 0 {
		user["use_cases"] = ev.UseCases
		props["use_cases"] = ev.UseCases
	}
	if ev.UsageFrequency != "" {
		user["estimated_volume"] = ev.UsageFrequency
		props["estimated_volume"] = ev.UsageFrequency
	}
	if ev.PlanKey != "" {
		props["plan"] = ev.PlanKey
	}

	return crmPayload{
		Name:       name,
		User:       crmUser{Email: ev.Email, Properties: user},
		Properties: props,
	}, true
}
