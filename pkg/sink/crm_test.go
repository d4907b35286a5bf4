package sink_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/sink"
	"github.com/dmitrymomot/funnel/pkg/webhook"
)

func TestCRM_FormSubmit(t *testing.T) {
	t.Parallel()

	srv, c := newCaptureServer(t, http.StatusOK)
	crm := sink.NewCRM(srv.URL, "secret", sink.WithSendOptions(noRetry()))

	require.NoError(t, crm.Report(context.Background(), formEvent()))

	body, headers := c.last(t)
	assert.Equal(t, "Push secret", headers.Get("Authorization"))
	assert.Equal(t, "formSubmit", body["name"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	userProps := user["properties"].(map[string]any)
	assert.Equal(t, "Ana", userProps["first_name"])
	assert.Equal(t, "pt", userProps["language"])
	assert.Equal(t, "weekly", userProps["estimated_volume"])
	assert.Equal(t, []any{"courses", "webinars"}, userProps["use_cases"])

	props := body["properties"].(map[string]any)
	assert.Equal(t, "pro-monthly-trial", props["plan"])
	assert.NotContains(t, props, "value")
}

func TestCRM_TrialPurchase(t *testing.T) {
	t.Parallel()

	srv, c := newCaptureServer(t, http.StatusOK)
	crm := sink.NewCRM(srv.URL, "", sink.WithSendOptions(noRetry()))

	require.NoError(t, crm.Report(context.Background(), trialPurchase()))

	body, headers := c.last(t)
	assert.Empty(t, headers.Get("Authorization"))
	assert.Equal(t, "Purchase", body["name"])

	props := body["properties"].(map[string]any)
	assert.InDelta(t, 6.0, props["value"], 0.001)
	assert.InDelta(t, 6.0, props["expectedValue"], 0.001)
	assert.Equal(t, "EUR", props["currency"])
	assert.Equal(t, "txn_1", props["transactionId"])
	assert.Equal(t, "2026-03-01T10:00:00Z", props["trial_started_on"])
	assert.Equal(t, "2026-03-08T10:00:00Z", props["trial_expires_on"])
}

func TestCRM_PaidPurchaseHasNoTrialFields(t *testing.T) {
	t.Parallel()

	srv, c := newCaptureServer(t, http.StatusOK)
	crm := sink.NewCRM(srv.URL, "", sink.WithSendOptions(noRetry()))

	ev := trialPurchase()
	ev.Trial = false
	ev.ExpectedValue = nil
	require.NoError(t, crm.Report(context.Background(), ev))

	body, _ := c.last(t)
	props := body["properties"].(map[string]any)
	assert.NotContains(t, props, "expectedValue")
	assert.NotContains(t, props, "trial_started_on")
}

func TestCRM_UnsupportedKind(t *testing.T) {
	t.Parallel()

	srv, c := newCaptureServer(t, http.StatusOK)
	crm := sink.NewCRM(srv.URL, "")

	err := crm.Report(context.Background(), conversion.Event{Kind: conversion.DownsellShown, SessionID: "s"})
	assert.ErrorIs(t, err, conversion.ErrUnsupportedKind)
	assert.Zero(t, c.count())
}

func TestCRM_DisabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	crm := sink.NewCRM("", "")
	assert.False(t, crm.Enabled())
	assert.ErrorIs(t, crm.Report(context.Background(), formEvent()), sink.ErrNotConfigured)
}

func TestCRM_ServerErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv, _ := newCaptureServer(t, http.StatusBadRequest)
	crm := sink.NewCRM(srv.URL, "", sink.WithSendOptions(noRetry()))

	err := crm.Report(context.Background(), formEvent())
	assert.ErrorIs(t, err, webhook.ErrPermanentFailure)
}

func TestCRM_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	srv, c := newCaptureServer(t, http.StatusInternalServerError)
	crm := sink.NewCRM(srv.URL, "",
		sink.WithSendOptions(noRetry()),
		sink.WithCircuitBreaker(2, time.Minute),
	)

	ctx := context.Background()
	assert.Error(t, crm.Report(ctx, formEvent()))
	assert.Error(t, crm.Report(ctx, formEvent()))
	err := crm.Report(ctx, formEvent())
	assert.ErrorIs(t, err, webhook.ErrCircuitOpen)
	assert.Equal(t, 2, c.count())
}
