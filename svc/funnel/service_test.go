package funnel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/plan"
	"github.com/dmitrymomot/funnel/pkg/valuation"
	"github.com/dmitrymomot/funnel/svc/funnel"
)

type recorder struct {
	name   string
	mu     sync.Mutex
	events []conversion.Event
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Report(_ context.Context, ev conversion.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder) of(kind conversion.Kind) []conversion.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conversion.Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) waitFor(t *testing.T, kind conversion.Kind, n int) []conversion.Event {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.of(kind)) >= n }, 2*time.Second, 5*time.Millisecond)
	return r.of(kind)
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []checkout.OpenRequest
	err      error
}

func (g *fakeGateway) Open(_ context.Context, req checkout.OpenRequest) (*checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &checkout.Session{
		TransactionID: "txn_1",
		URL:           "https://pay.example.com/checkout?_ptxn=txn_1",
		PriceID:       req.PriceID,
		Display:       req.Display,
		SuccessURL:    req.SuccessURL,
	}, nil
}

func (g *fakeGateway) opened() []checkout.OpenRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]checkout.OpenRequest(nil), g.requests...)
}

type harness struct {
	svc     *funnel.Service
	gateway *fakeGateway
	all     *recorder
	revenue *recorder
}

func newHarness(t *testing.T, opts ...funnel.Option) *harness {
	t.Helper()
	h := &harness{
		gateway: &fakeGateway{},
		all:     &recorder{name: "all"},
		revenue: &recorder{name: "revenue"},
	}
	reporter := conversion.NewReporter(
		conversion.WithSink(h.all, conversion.Acknowledged),
		conversion.WithSink(h.revenue, conversion.RevenueRelevant),
	)
	store := funnel.NewMemoryStore(funnel.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	base := []funnel.Option{
		funnel.WithStore(store),
		funnel.WithReporter(reporter),
		funnel.WithGateway(environment.Production, h.gateway),
		funnel.WithGateway(environment.Sandbox, h.gateway),
		funnel.WithSettleDelay(0),
	}
	h.svc = funnel.NewService(append(base, opts...)...)
	return h
}

func icpForm() lead.Form {
	return lead.Form{
		FirstName:      "Ana",
		Email:          "ana@example.com",
		UseCases:       []string{"courses", "webinars"},
		UsageFrequency: "weekly",
	}
}

func amount(v float64) *valuation.Amount {
	a := valuation.FromFloat(v)
	return &a
}

func start(t *testing.T, h *harness, params plan.EntryParams) *funnel.Session {
	t.Helper()
	sess, err := h.svc.Start(context.Background(), funnel.Entry{Params: params, Language: "pt-BR"})
	require.NoError(t, err)
	return sess
}

func TestService_Start(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the production default plan", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		snap := start(t, h, plan.EntryParams{}).Snapshot()

		assert.Equal(t, environment.Production, snap.Environment)
		assert.Equal(t, plan.Key("occasional-monthly-trial"), snap.PlanKey)
		assert.True(t, snap.HasTrial)
		assert.Equal(t, plan.SourceDefault, snap.Source)
		assert.Equal(t, downsell.StateIdle, snap.State)
		assert.Equal(t, "pt-br", snap.Language)
	})

	t.Run("sandbox environment uses the sandbox catalog", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		snap := start(t, h, plan.EntryParams{Environment: "sandbox"}).Snapshot()

		assert.Equal(t, environment.Sandbox, snap.Environment)
		assert.Equal(t, "pri_01k9x3z4gwqftdn048nda1xsvc", snap.PriceID)
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		sess, err := h.svc.Start(context.Background(), funnel.Entry{Language: "xx"})
		require.NoError(t, err)
		assert.Equal(t, "en", sess.Snapshot().Language)
	})

	t.Run("session can be loaded by id", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, funnel.WithIDGenerator(func() string { return "fixed" }))
		start(t, h, plan.EntryParams{})

		sess, err := h.svc.Session(context.Background(), "fixed")
		require.NoError(t, err)
		assert.Equal(t, "fixed", sess.ID())

		_, err = h.svc.Session(context.Background(), "missing")
		assert.ErrorIs(t, err, funnel.ErrSessionNotFound)
	})
}

func TestService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("reports the lead and opens checkout", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		sess := start(t, h, plan.EntryParams{Plan: "pro-yearly-trial"})

		res, err := h.svc.Submit(context.Background(), sess.ID(), icpForm())
		require.NoError(t, err)
		require.NotNil(t, res.Checkout)
		assert.Equal(t, "txn_1", res.Checkout.TransactionID)
		assert.Equal(t, downsell.StateCheckoutOpen, res.Session.State)
		assert.Equal(t, "ana@example.com", res.Session.Email)

		reqs := h.gateway.opened()
		require.Len(t, reqs, 1)
		assert.Equal(t, "pri_01kbcn6ee3g00jak58r3ykrk81", reqs[0].PriceID)
		assert.Equal(t, "pro-yearly-trial", reqs[0].PlanKey)
		assert.Equal(t, checkout.DisplayOverlay, reqs[0].Display.Mode)
		assert.Equal(t, "pt", reqs[0].Display.Locale)
		assert.Contains(t, reqs[0].SuccessURL, "plan=pro-yearly-trial")

		forms := h.all.of(conversion.FormSubmitted)
		require.Len(t, forms, 1, "acknowledged sink is awaited before checkout")
		assert.Equal(t, []string{"courses", "webinars"}, forms[0].UseCases)
		h.revenue.waitFor(t, conversion.FormSubmitted, 1)
		h.all.waitFor(t, conversion.CheckoutInitiated, 1)
	})

	t.Run("invalid form reports nothing", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		sess := start(t, h, plan.EntryParams{})

		_, err := h.svc.Submit(context.Background(), sess.ID(), lead.Form{Email: "nope"})
		var fe lead.FieldErrors
		require.ErrorAs(t, err, &fe)
		assert.True(t, fe.Has(lead.FieldEmail))
		assert.Empty(t, h.all.of(conversion.FormSubmitted))
		assert.Empty(t, h.gateway.opened())
		assert.False(t, sess.Snapshot().Submitting)
	})

	t.Run("non-ICP lead is withheld from revenue sinks", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		sess := start(t, h, plan.EntryParams{})
		form := icpForm()
		form.UseCases = []string{"Personal videos"}

		_, err := h.svc.Submit(context.Background(), sess.ID(), form)
		require.NoError(t, err)
		h.all.waitFor(t, conversion.CheckoutInitiated, 1)
		assert.Len(t, h.all.of(conversion.FormSubmitted), 1)
		assert.Empty(t, h.revenue.of(conversion.FormSubmitted))
	})

	t.Run("concurrent submit is rejected while one is pending", func(t *testing.T) {
		t.Parallel()
		entered := make(chan struct{})
		release := make(chan struct{})
		gw := checkout.GatewayFunc(func(ctx context.Context, req checkout.OpenRequest) (*checkout.Session, error) {
			close(entered)
			<-release
			return &checkout.Session{TransactionID: "txn_1", URL: "https://pay.example.com"}, nil
		})
		h := newHarness(t, funnel.WithGateway(environment.Production, gw))
		sess := start(t, h, plan.EntryParams{})

		errc := make(chan error, 1)
		go func() {
			_, err := h.svc.Submit(context.Background(), sess.ID(), icpForm())
			errc <- err
		}()
		<-entered

		_, err := h.svc.Submit(context.Background(), sess.ID(), icpForm())
		assert.ErrorIs(t, err, funnel.ErrSubmitInFlight)
		assert.True(t, sess.Snapshot().Submitting)

		close(release)
		require.NoError(t, <-errc)
		assert.False(t, sess.Snapshot().Submitting)
	})

	t.Run("gateway failure is payment unavailable", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.gateway.err = errors.New("boom")
		sess := start(t, h, plan.EntryParams{})

		_, err := h.svc.Submit(context.Background(), sess.ID(), icpForm())
		assert.ErrorIs(t, err, funnel.ErrPaymentUnavailable)
		assert.Equal(t, downsell.StateIdle, sess.Snapshot().State)
		assert.Len(t, h.all.of(conversion.FormSubmitted), 1, "lead is captured even when payment fails")
	})

	t.Run("missing gateway is payment unavailable", func(t *testing.T) {
		t.Parallel()
		all := &recorder{name: "all"}
		svc := funnel.NewService(
			funnel.WithReporter(conversion.NewReporter(conversion.WithSink(all))),
			funnel.WithSettleDelay(0),
		)
		sess, err := svc.Start(context.Background(), funnel.Entry{})
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), sess.ID(), icpForm())
		assert.ErrorIs(t, err, funnel.ErrPaymentUnavailable)
	})

	t.Run("submit after completion is rejected", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		sess := start(t, h, plan.EntryParams{})
		_, err := h.svc.Submit(context.Background(), sess.ID(), icpForm())
		require.NoError(t, err)
		_, err = h.svc.HandleSignal(context.Background(), sess.ID(), checkout.Signal{Kind: checkout.SignalCompleted})
		require.NoError(t, err)

		_, err = h.svc.Submit(context.Background(), sess.ID(), icpForm())
		assert.ErrorIs(t, err, funnel.ErrCheckoutCompleted)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		_, err := h.svc.Submit(context.Background(), "missing", icpForm())
		assert.ErrorIs(t, err, funnel.ErrSessionNotFound)
	})

	t.Run("settle delay honors cancellation", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, funnel.WithSettleDelay(time.Hour))
		sess := start(t, h, plan.EntryParams{})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := h.svc.Submit(ctx, sess.ID(), icpForm())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, h.gateway.opened())
	})
}
