package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestFunnelAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr slog.Attr
		key  string
		val  any
	}{
		{logger.Component("reporter"), "component", "reporter"},
		{logger.Event("Purchase"), "event", "Purchase"},
		{logger.Sink("plausible"), "sink", "plausible"},
		{logger.PlanKey("pro-monthly-trial"), "plan_key", "pro-monthly-trial"},
		{logger.PriceID("pri_1"), "price_id", "pri_1"},
		{logger.SessionID("abc"), "session_id", "abc"},
		{logger.Duration(time.Second), "duration", time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.attr.Key)
		assert.Equal(t, tt.val, tt.attr.Value.Any())
	}

	assert.True(t, logger.PlanKey("").Equal(slog.Attr{}))
	assert.True(t, logger.PriceID("").Equal(slog.Attr{}))
	assert.True(t, logger.SessionID(nil).Equal(slog.Attr{}))
}
