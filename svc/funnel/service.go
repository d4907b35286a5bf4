package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/plan"
)

// Service defaults.
const (
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultAckTimeout  = 5 * time.Second
)

// Service runs funnel sessions.
type Service struct {
	store       Store
	catalogs    map[environment.Environment]*plan.Catalog
	gateways    map[environment.Environment]checkout.Gateway
	reporter    *conversion.Reporter
	logger      *slog.Logger
	settleDelay time.Duration
	ackTimeout  time.Duration
	successBase string
	now         func() time.Time
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithStore sets the session store. Defaults to a MemoryStore.
func WithStore(st Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithCatalog overrides the plan catalog of an environment.
func WithCatalog(env environment.Environment, c *plan.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalogs[env] = c
		}
	}
}

// WithGateway sets the checkout gateway of an environment.
// Sessions in an environment without a gateway fail with ErrPaymentUnavailable.
func WithGateway(env environment.Environment, g checkout.Gateway) Option {
	return func(s *Service) {
		if g != nil {
			s.gateways[env] = g
		}
	}
}

// WithReporter sets the conversion reporter.
func WithReporter(r *conversion.Reporter) Option {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.With(logger.Component("funnel"))
		}
	}
}

// WithSettleDelay sets the pause between lead capture and opening checkout,
// giving fire-and-forget sinks a head start. Zero disables it.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.settleDelay = d
		}
	}
}

// WithAckTimeout caps how long Submit waits for acknowledged sinks.
func WithAckTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ackTimeout = d
		}
	}
}

// WithSuccessURL sets the base of the post-checkout redirect.
func WithSuccessURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.successBase = base
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService builds a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		catalogs: map[environment.Environment]*plan.Catalog{
			environment.Production: plan.Production(),
			environment.Sandbox:    plan.Sandbox(),
		},
		gateways:    map[environment.Environment]checkout.Gateway{},
		logger:      logger.Discard(),
		settleDelay: DefaultSettleDelay,
		ackTimeout:  DefaultAckTimeout,
		successBase: checkout.DefaultSuccessBase,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.reporter == nil {
		s.reporter = conversion.NewReporter(conversion.WithLogger(s.logger))
	}
	return s
}

// Start opens a session for entry. Resolution never fails: unknown plans,
// environments and languages degrade to their defaults.
func (s *Service) Start(ctx context.Context, entry Entry) (*Session, error) {
	env := environment.Parse(entry.Params.Environment)
	catalog := s.catalogs[env]
	if catalog == nil {
		catalog = plan.ForEnvironment(env)
	}
	lang, ok := i18n.Normalize(entry.Language)
	if !ok {
		lang = i18n.DefaultLanguage
	}

	now := s.now()
	sess := &Session{
		id:         s.newID(),
		env:        env,
		lang:       lang,
		catalog:    catalog,
		resolution: plan.Resolve(entry.Params, catalog),
		referral:   entry.Referral,
		clientIP:   entry.ClientIP,
		userAgent:  entry.UserAgent,
		pageURL:    entry.PageURL,
		createdAt:  now,
		touchedAt:  now,
	}
	sess.policy = downsell.NewPolicy(catalog, downsell.WithLogger(s.logger.With(logger.SessionID(sess.id))))

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "funnel session started",
		logger.SessionID(sess.id),
		slog.String("environment", env.String()),
		slog.String("language", lang),
		logger.PlanKey(string(sess.resolution.Key)),
		logger.PriceID(sess.resolution.PriceID),
		slog.String("source", string(sess.resolution.Source)),
	)
	return sess, nil
}

// Session loads a session by id.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	return s.store.Load(ctx, id)
}

// SubmitResult is the checkout opened for a session.
type SubmitResult struct {
	Checkout *checkout.Session `json:"checkout"`
	Session  Snapshot          `json:"session"`
}

// Submit captures the lead and opens checkout.
//
// A second Submit while one is pending returns ErrSubmitInFlight. While a
// downsell offer is showing, Submit returns ErrOfferPending. Invalid
// forms return lead.FieldErrors and report nothing. FormSubmitted is reported
// on every valid submission; the call waits for acknowledged sinks (bounded
// by the ack timeout) and the settle delay before opening checkout. A gateway
// failure returns ErrPaymentUnavailable.
func (s *Service) Submit(ctx context.Context, id string, form lead.Form) (*SubmitResult, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := s.openBlockedLocked(ctx, sess); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	l, err := form.Validate()
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.lead = l
	sess.submitting = true
	sess.touchedAt = s.now()
	ev := s.eventLocked(sess, conversion.FormSubmitted)
	sess.mu.Unlock()
	defer sess.setSubmitting(false)

	dispatch := s.reporter.Report(ctx, ev)
	waitCtx, cancel := context.WithTimeout(ctx, s.ackTimeout)
	if err := dispatch.Wait(waitCtx); err != nil {
		s.logger.WarnContext(ctx, "acknowledged sinks did not finish before checkout",
			logger.SessionID(id),
			logger.Error(err),
		)
	}
	cancel()

	if err := sleepCtx(ctx, s.settleDelay); err != nil {
		return nil, err
	}

	return s.openCheckout(ctx, sess)
}

// AcceptOffer switches the session to the shown downsell plan and re-opens checkout.
func (s *Service) AcceptOffer(ctx context.Context, id string) (*SubmitResult, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	offer, err := sess.policy.Accept(ctx)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	def := offer.Plan
	sess.resolution = plan.Resolution{
		Key:      offer.Key,
		Plan:     &def,
		PriceID:  def.PriceID,
		HasTrial: def.HasTrial(),
		Source:   plan.SourceDownsell,
	}
	sess.submitting = true
	sess.touchedAt = s.now()
	ev := s.eventLocked(sess, conversion.DownsellAccepted)
	ev.OfferKey = string(offer.Key)
	ev.OfferKind = string(offer.Kind)
	sess.mu.Unlock()
	defer sess.setSubmitting(false)

	s.reporter.Report(ctx, ev)
	s.logger.InfoContext(ctx, "downsell accepted",
		logger.SessionID(id),
		logger.PlanKey(string(offer.Key)),
		slog.String("from", string(offer.From)),
	)

	return s.openCheckout(ctx, sess)
}

// DismissOffer declines the shown downsell.
func (s *Service) DismissOffer(ctx context.Context, id string) (*Outcome, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.policy.Dismiss(ctx); err != nil {
		return nil, err
	}
	sess.touchedAt = s.now()
	return &Outcome{State: sess.policy.State()}, nil
}

// openBlockedLocked reports why checkout cannot be opened now, if it cannot.
// Callers hold sess.mu.
func (s *Service) openBlockedLocked(ctx context.Context, sess *Session) error {
	switch {
	case sess.policy.Completed():
		return ErrCheckoutCompleted
	case !sess.policy.CanOpen(ctx):
		return ErrOfferPending
	}
	return nil
}

func (s *Service) openCheckout(ctx context.Context, sess *Session) (*SubmitResult, error) {
	sess.mu.Lock()
	// A signal may have moved the lifecycle during the ack wait or settle delay.
	if err := s.openBlockedLocked(ctx, sess); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	key := sess.resolution.Key
	priceID := sess.resolution.PriceID
	lang2 := i18n.TwoLetter(sess.lang)
	req := checkout.OpenRequest{
		SessionID:     sess.id,
		PriceID:       priceID,
		PlanKey:       string(key),
		Quantity:      1,
		CustomerEmail: sess.lead.Email,
		Display:       checkout.DefaultDisplay(lang2),
		SuccessURL:    checkout.SuccessURL(s.successBase, sess.lead.Email, lang2, priceID, string(key)),
		Referral:      sess.referral,
	}
	gw := s.gateways[sess.env]
	sess.mu.Unlock()

	log := s.logger.With(logger.SessionID(sess.id), logger.PriceID(priceID))

	if gw == nil {
		log.ErrorContext(ctx, "no checkout gateway configured", slog.String("environment", sess.env.String()))
		return nil, ErrPaymentUnavailable
	}
	cs, err := gw.Open(ctx, req)
	if err != nil {
		log.ErrorContext(ctx, "failed to open checkout", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentUnavailable, err)
	}

	sess.mu.Lock()
	if err := sess.policy.Open(ctx, key, priceID); err != nil {
		if !errors.Is(err, downsell.ErrSignalIgnored) {
			sess.mu.Unlock()
			return nil, err
		}
		log.DebugContext(ctx, "checkout re-opened without lifecycle transition",
			slog.String("state", string(sess.policy.State())),
		)
	}
	sess.checkout = cs
	sess.touchedAt = s.now()
	ev := s.eventLocked(sess, conversion.CheckoutInitiated)
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	s.reporter.Report(ctx, ev)
	log.InfoContext(ctx, "checkout opened", logger.PlanKey(string(key)))

	return &SubmitResult{Checkout: cs, Session: snap}, nil
}

// eventLocked builds an event from the session. Callers hold sess.mu.
func (s *Service) eventLocked(sess *Session, kind conversion.Kind) conversion.Event {
	return conversion.Event{
		Kind:           kind,
		SessionID:      sess.id,
		Environment:    sess.env,
		OccurredAt:     s.now().UTC(),
		Email:          sess.lead.Email,
		FirstName:      sess.lead.FirstName,
		Language:       sess.lang,
		UseCases:       slices.Clone(sess.lead.UseCases),
		UsageFrequency: sess.lead.UsageFrequency,
		PlanKey:        string(sess.resolution.Key),
		PriceID:        sess.resolution.PriceID,
		Trial:          sess.resolution.HasTrial,
		ClientIP:       sess.clientIP,
		UserAgent:      sess.userAgent,
		PageURL:        sess.pageURL,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
