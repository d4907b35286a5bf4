package sink_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/valuation"
	"github.com/dmitrymomot/funnel/pkg/webhook"
)

type capture struct {
	mu       sync.Mutex
	bodies   []map[string]any
	headers  []http.Header
	status   int
	requests int
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(body, &decoded)

		c.mu.Lock()
		c.requests++
		c.bodies = append(c.bodies, decoded)
		c.headers = append(c.headers, r.Header.Clone())
		c.mu.Unlock()

		w.WriteHeader(c.status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func (c *capture) last(t *testing.T) (map[string]any, http.Header) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.bodies, "no request captured")
	return c.bodies[len(c.bodies)-1], c.headers[len(c.headers)-1]
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

func amountPtr(a valuation.Amount) *valuation.Amount { return &a }

func formEvent() conversion.Event {
	return conversion.Event{
		ID:             "ev-1",
		Kind:           conversion.FormSubmitted,
		SessionID:      "sess-1",
		Email:          "ana@example.com",
		FirstName:      "Ana",
		Language:       "pt-br",
		UseCases:       []string{"courses", "webinars"},
		UsageFrequency: "weekly",
		PlanKey:        "pro-monthly-trial",
	}
}

func trialPurchase() conversion.Event {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	ev := formEvent()
	ev.Kind = conversion.Purchase
	ev.Trial = true
	ev.Value = valuation.FromFloat(6)
	ev.ExpectedValue = amountPtr(valuation.FromFloat(6))
	ev.Currency = "EUR"
	ev.TransactionID = "txn_1"
	ev.TrialStartedOn = &start
	ev.TrialExpiresOn = &end
	return ev
}

func noRetry() webhook.SendOption { return webhook.WithNoRetry() }
