package downsell

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/funnel/pkg/plan"
	"github.com/dmitrymomot/funnel/pkg/statemachine"
)

// State is a checkout lifecycle state.
type State string

const (
	StateIdle             State = "idle"
	StateCheckoutOpen     State = "checkout_open"
	StateCompleted        State = "completed"
	StateAbandonedNoOffer State = "abandoned_no_offer"
	StateOfferShown       State = "offer_shown"
	StateOfferAccepted    State = "offer_accepted"
	StateOfferDismissed   State = "offer_dismissed"
)

// Terminal reports whether no further checkout signal is expected in s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateAbandonedNoOffer, StateOfferDismissed:
		return true
	}
	return false
}

// Event drives the lifecycle.
type Event string

const (
	EventOpen     Event = "open"
	EventComplete Event = "complete"
	EventClose    Event = "close"
	EventAccept   Event = "accept"
	EventDismiss  Event = "dismiss"
)

// Policy is the per-session downsell state machine.
type Policy struct {
	catalog *plan.Catalog
	machine *statemachine.Machine[State, Event]
	logger  *slog.Logger

	current   plan.Key
	priceID   string
	completed bool
	shown     bool
	offer     *Offer
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger used for transition traces.
func WithLogger(l *slog.Logger) Option {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPolicy builds a policy in the idle state for catalog.
func NewPolicy(catalog *plan.Catalog, opts ...Option) *Policy {
	p := &Policy{
		catalog: catalog,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	type (
		S = State
		E = Event
	)
	p.machine = statemachine.MustNew[S, E](StateIdle,
		statemachine.WithTransitionFrom[S, E](
			[]S{StateIdle, StateOfferAccepted, StateAbandonedNoOffer, StateOfferDismissed},
			StateCheckoutOpen, EventOpen,
		),
		statemachine.WithTransition(StateCheckoutOpen, StateCompleted, EventComplete,
			statemachine.WithAction[S, E](p.markCompleted),
		),
		statemachine.WithTransition(StateCheckoutOpen, StateOfferShown, EventClose,
			statemachine.WithGuard[S, E](p.canShowOffer),
			statemachine.WithAction[S, E](p.markShown),
		),
		statemachine.WithTransition[S, E](StateCheckoutOpen, StateAbandonedNoOffer, EventClose),
		statemachine.WithTransition(StateOfferShown, StateOfferAccepted, EventAccept,
			statemachine.WithAction[S, E](p.resetCompleted),
		),
		statemachine.WithTransition[S, E](StateOfferShown, StateOfferDismissed, EventDismiss),
		statemachine.WithObserver[S, E](p.trace),
	)
	return p
}

// State returns the current lifecycle state.
func (p *Policy) State() State { return p.machine.Current() }

// Shown reports whether an offer was shown in this session.
func (p *Policy) Shown() bool { return p.shown }

// Completed reports whether checkout completed.
func (p *Policy) Completed() bool { return p.completed }

// Offer returns the offer shown in this session, if any.
func (p *Policy) Offer() *Offer { return p.offer }

// CurrentKey returns the plan key checkout was last opened with.
func (p *Policy) CurrentKey() plan.Key { return p.current }

// CanOpen reports whether checkout may be opened now. It is true while checkout
// is already open, and false while a shown offer awaits accept or dismiss.
func (p *Policy) CanOpen(ctx context.Context) bool {
	return p.machine.Is(StateCheckoutOpen) || p.machine.CanFire(ctx, EventOpen, nil)
}

// OfferPending reports whether a shown offer awaits accept or dismiss.
func (p *Policy) OfferPending() bool { return p.machine.Is(StateOfferShown) }

// Open records a checkout open for key (empty for synthetic plans) and priceID.
func (p *Policy) Open(ctx context.Context, key plan.Key, priceID string) error {
	if err := p.fire(ctx, EventOpen, nil); err != nil {
		return err
	}
	p.current = key
	p.priceID = priceID
	return nil
}

// Complete records a completed checkout and disables downsell for the session.
func (p *Policy) Complete(ctx context.Context) error {
	return p.fire(ctx, EventComplete, nil)
}

// Close records an abandoned checkout and returns the offer to show, or nil.
func (p *Policy) Close(ctx context.Context) (*Offer, error) {
	var candidate *Offer
	if !p.completed && !p.shown {
		key := p.current
		if key == "" {
			key, _ = ReverseLookup(p.priceID, p.catalog)
		}
		candidate = NextOffer(key, p.catalog)
	}
	if err := p.fire(ctx, EventClose, candidate); err != nil {
		return nil, err
	}
	if p.State() == StateOfferShown {
		return p.offer, nil
	}
	return nil, nil
}

// Accept takes the shown offer. The caller re-opens checkout with the returned plan.
func (p *Policy) Accept(ctx context.Context) (*Offer, error) {
	if !p.OfferPending() {
		return nil, ErrNoOfferShown
	}
	if err := p.fire(ctx, EventAccept, nil); err != nil {
		return nil, err
	}
	return p.offer, nil
}

// Dismiss declines the shown offer.
func (p *Policy) Dismiss(ctx context.Context) error {
	if !p.OfferPending() {
		return ErrNoOfferShown
	}
	return p.fire(ctx, EventDismiss, nil)
}

func (p *Policy) fire(ctx context.Context, ev Event, data any) error {
	err := p.machine.Fire(ctx, ev, data)
	if err == nil {
		return nil
	}
	if errors.Is(err, statemachine.ErrNoTransition) {
		return errors.Join(ErrSignalIgnored, err)
	}
	return err
}

func (p *Policy) canShowOffer(_ context.Context, _ State, _ Event, data any) bool {
	offer, _ := data.(*Offer)
	return offer != nil && !p.completed && !p.shown
}

func (p *Policy) markShown(_ context.Context, _, _ State, _ Event, data any) error {
	p.shown = true
	p.offer = data.(*Offer)
	return nil
}

func (p *Policy) markCompleted(context.Context, State, State, Event, any) error {
	p.completed = true
	return nil
}

func (p *Policy) resetCompleted(context.Context, State, State, Event, any) error {
	p.completed = false
	return nil
}

func (p *Policy) trace(ctx context.Context, from, to State, ev Event) {
	p.logger.DebugContext(ctx, "checkout lifecycle transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("event", string(ev)),
		slog.String("plan_key", string(p.current)),
	)
}
