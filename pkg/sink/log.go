package sink

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/logger"
)

// Log writes every event to a logger. Useful in development and sandbox runs.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog builds a log sink writing at info level.
func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = logger.Discard()
	}
	return &Log{logger: l, level: slog.LevelInfo}
}

func (l *Log) Name() string { return "log" }

// Report implements conversion.Sink.
func (l *Log) Report(ctx context.Context, ev conversion.Event) error {
	attrs := []slog.Attr{
		logger.Event(ev.Kind.String()),
		logger.SessionID(ev.SessionID),
		slog.String("event_id", ev.ID),
		slog.String("environment", ev.Environment.String()),
		logger.PlanKey(ev.PlanKey),
		logger.PriceID(ev.PriceID),
	}
	if ev.Kind == conversion.Purchase {
		attrs = append(attrs,
			slog.String("value", ev.Value.String()),
			slog.String("currency", ev.Currency),
			slog.Bool("trial", ev.Trial),
		)
	}
	if ev.OfferKey != "" {
		attrs = append(attrs, slog.String("offer_key", ev.OfferKey), slog.String("offer_kind", ev.OfferKind))
	}
	l.logger.LogAttrs(ctx, l.level, "conversion event", attrs...)
	return nil
}
