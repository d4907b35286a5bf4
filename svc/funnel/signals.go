package funnel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// Outcome is the effect of a checkout signal on a session.
type Outcome struct {
	Signal  checkout.SignalKind `json:"signal,omitempty"`
	State   downsell.State      `json:"state"`
	Ignored bool                `json:"ignored"`
	Offer   *downsell.Offer     `json:"offer,omitempty"`
	Value   *valuation.Amount   `json:"value,omitempty"`
}

// HandleSignal applies a checkout signal to the session.
//
// Signals the lifecycle does not accept in the current state, such as a close
// after completion or a second completion, return an Outcome with Ignored set
// and report nothing.
func (s *Service) HandleSignal(ctx context.Context, id string, sig checkout.Signal) (*Outcome, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	out, ev, err := s.applyLocked(ctx, sess, sig)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if ev != nil {
		s.reporter.Report(ctx, *ev)
	}
	return out, nil
}

func (s *Service) applyLocked(ctx context.Context, sess *Session, sig checkout.Signal) (*Outcome, *conversion.Event, error) {
	sess.touchedAt = s.now()
	out := &Outcome{Signal: sig.Kind}
	log := s.logger.With(logger.SessionID(sess.id), slog.String("signal", string(sig.Kind)))

	ignored := func(err error) (*Outcome, *conversion.Event, error) {
		if !errors.Is(err, downsell.ErrSignalIgnored) {
			return nil, nil, err
		}
		log.DebugContext(ctx, "checkout signal ignored", slog.String("state", string(sess.policy.State())))
		out.Ignored = true
		out.State = sess.policy.State()
		return out, nil, nil
	}

	switch sig.Kind {
	case checkout.SignalCompleted:
		if err := sess.policy.Complete(ctx); err != nil {
			return ignored(err)
		}
		ev := s.purchaseLocked(sess, sig)
		out.State = sess.policy.State()
		out.Value = &ev.Value
		log.InfoContext(ctx, "checkout completed",
			logger.PlanKey(ev.PlanKey),
			slog.String("transaction_id", ev.TransactionID),
			slog.String("value", ev.Value.String()),
			slog.Bool("trial", ev.Trial),
		)
		return out, &ev, nil

	case checkout.SignalClosed:
		offer, err := sess.policy.Close(ctx)
		if err != nil {
			return ignored(err)
		}
		out.State = sess.policy.State()
		if offer == nil {
			log.InfoContext(ctx, "checkout abandoned without offer")
			return out, nil, nil
		}
		o := *offer
		out.Offer = &o
		ev := s.eventLocked(sess, conversion.DownsellShown)
		ev.OfferKey = string(offer.Key)
		ev.OfferKind = string(offer.Kind)
		log.InfoContext(ctx, "downsell offer shown",
			slog.String("from", string(offer.From)),
			logger.PlanKey(string(offer.Key)),
			slog.String("kind", string(offer.Kind)),
		)
		return out, &ev, nil

	case checkout.SignalCustomerUpdated:
		if sig.Email != "" {
			sess.lead.Email = sig.Email
		}
		out.State = sess.policy.State()
		return out, nil, nil

	case checkout.SignalPaymentMethodSelected:
		out.State = sess.policy.State()
		if sess.policy.State() != downsell.StateCheckoutOpen {
			out.Ignored = true
			return out, nil, nil
		}
		ev := s.eventLocked(sess, conversion.PaymentMethodSelected)
		ev.PaymentMethod = sig.PaymentMethod
		return out, &ev, nil
	}

	return nil, nil, checkout.ErrUnknownSignal
}

// purchaseLocked builds the Purchase event. Trials are valued at their
// expected value and carry a synthetic trial window; direct purchases use
// the charged total.
func (s *Service) purchaseLocked(sess *Session, sig checkout.Signal) conversion.Event {
	ev := s.eventLocked(sess, conversion.Purchase)
	if ev.Email == "" {
		ev.Email = sig.Email
	}
	if sig.PriceID != "" && ev.PriceID == "" {
		ev.PriceID = sig.PriceID
	}
	ev.TransactionID = sig.TransactionID
	ev.Currency = sig.Currency
	if ev.Currency == "" {
		ev.Currency = valuation.DefaultCurrency
	}
	if sig.Totals.Tax != nil {
		ev.Tax = *sig.Totals.Tax
	}

	def := sess.resolution.Plan
	ev.Value = valuation.AttributedValue(ev.Trial, def, sig.Totals.Total)
	if ev.Trial {
		expected := ev.Value
		ev.ExpectedValue = &expected
		days := 0
		if def != nil {
			days = def.TrialDays
		}
		start, end := valuation.TrialWindow(ev.OccurredAt, days)
		ev.TrialStartedOn = &start
		ev.TrialExpiresOn = &end
	}
	return ev
}

// Listen applies signals from ch until it closes or ctx is done.
func (s *Service) Listen(ctx context.Context, id string, ch <-chan checkout.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := s.HandleSignal(ctx, id, sig); err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					return err
				}
				s.logger.WarnContext(ctx, "failed to apply checkout signal",
					logger.SessionID(id),
					slog.String("signal", string(sig.Kind)),
					logger.Error(err),
				)
			}
		}
	}
}

// HandleNotification applies a verified server notification. It deduplicates
// against browser signals through the lifecycle, so a completion seen both
// ways is reported once.
func (s *Service) HandleNotification(ctx context.Context, n *checkout.Notification) (*Outcome, error) {
	if n == nil || n.SessionID == "" {
		return nil, checkout.ErrInvalidNotification
	}
	out, err := s.HandleSignal(ctx, n.SessionID, n.Signal)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "checkout notification applied",
		logger.SessionID(n.SessionID),
		slog.String("event_id", n.EventID),
		slog.String("event_type", n.EventType),
		slog.Bool("ignored", out.Ignored),
	)
	return out, nil
}
