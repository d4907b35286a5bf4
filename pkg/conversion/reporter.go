package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/funnel/pkg/logger"
)

// DefaultSinkTimeout bounds a single sink delivery.
const DefaultSinkTimeout = 10 * time.Second

// Reporter fans events out to registered sinks.
type Reporter struct {
	regs    []registration
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithSink registers a sink with the given traits. Nil sinks are ignored.
func WithSink(s Sink, traits ...Trait) Option {
	return func(r *Reporter) {
		if s == nil {
			r.logger.Warn("nil conversion sink ignored")
			return
		}
		var t Trait
		for _, tr := range traits {
			t |= tr
		}
		r.regs = append(r.regs, registration{sink: s, traits: t})
	}
}

// WithLogger sets the reporter logger. Apply it before WithSink to log
// registration problems through it.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l.With(logger.Component("conversion"))
		}
	}
}

// WithTimeout sets the per-sink delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReporter builds a Reporter.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		logger:  logger.Discard(),
		timeout: DefaultSinkTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sinks returns the registered sink names in registration order.
func (r *Reporter) Sinks() []string {
	names := make([]string, 0, len(r.regs))
	for _, reg := range r.regs {
		names = append(names, reg.sink.Name())
	}
	return names
}

// Result is the outcome of one sink for one event.
type Result struct {
	Sink       string
	Skipped    bool
	SkipReason SkipReason
	Err        error
	Duration   time.Duration
}

// Dispatch tracks the in-flight deliveries of one event.
type Dispatch struct {
	Event Event

	acked chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	results []Result
	err     error
}

func newDispatch(ev Event) *Dispatch {
	return &Dispatch{
		Event: ev,
		acked: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (d *Dispatch) record(res Result) {
	d.mu.Lock()
	d.results = append(d.results, res)
	d.mu.Unlock()
}

// Wait blocks until every acknowledged sink has finished or ctx is done.
// Sink failures are not returned; only ctx errors are.
func (d *Dispatch) Wait(ctx context.Context) error {
	select {
	case <-d.acked:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once every sink has finished.
func (d *Dispatch) Done() <-chan struct{} { return d.done }

// Err reports a validation failure that prevented dispatch.
func (d *Dispatch) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Results returns a snapshot of the finished sink outcomes, sorted by sink name.
func (d *Dispatch) Results() []Result {
	d.mu.Lock()
	out := slices.Clone(d.results)
	d.mu.Unlock()
	slices.SortFunc(out, func(a, b Result) int {
		switch {
		case a.Sink < b.Sink:
			return -1
		case a.Sink > b.Sink:
			return 1
		}
		return 0
	})
	return out
}

// Report delivers ev to every eligible sink in the background.
// It never blocks on delivery; use the returned Dispatch to wait.
func (r *Reporter) Report(ctx context.Context, ev Event) *Dispatch {
	ev = ev.normalize(r.now())
	d := newDispatch(ev)

	log := r.logger.With(
		logger.Event(ev.Kind.String()),
		logger.SessionID(ev.SessionID),
	)

	if err := ev.Validate(); err != nil {
		log.ErrorContext(ctx, "conversion event rejected", logger.Error(err))
		d.err = err
		close(d.acked)
		close(d.done)
		return d
	}

	// Deliveries must outlive the request that triggered them.
	base := context.WithoutCancel(ctx)

	var acked, rest errgroup.Group
	for _, reg := range r.regs {
		name := reg.sink.Name()
		if reason, skip := reg.skipReason(ev); skip {
			log.DebugContext(ctx, "conversion sink skipped",
				logger.Sink(name),
				slog.String("reason", string(reason)),
			)
			d.record(Result{Sink: name, Skipped: true, SkipReason: reason})
			continue
		}

		g := &rest
		if reg.traits.Has(Acknowledged) {
			g = &acked
		}
		g.Go(func() error {
			d.record(r.deliver(base, log, reg.sink, ev))
			return nil
		})
	}

	go func() {
		_ = acked.Wait()
		close(d.acked)
		_ = rest.Wait()
		close(d.done)
	}()

	return d
}

func (r *Reporter) deliver(ctx context.Context, log *slog.Logger, s Sink, ev Event) (res Result) {
	name := s.Name()
	start := r.now()
	res.Sink = name

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%w: %v", ErrSinkPanicked, p)
			log.ErrorContext(ctx, "conversion sink panicked",
				logger.Sink(name),
				logger.Error(res.Err),
			)
		}
		res.Duration = r.now().Sub(start)
	}()

	err := s.Report(ctx, ev)
	switch {
	case err == nil:
		log.DebugContext(ctx, "conversion delivered",
			logger.Sink(name),
			logger.Duration(r.now().Sub(start)),
		)
	case errors.Is(err, ErrUnsupportedKind):
		res.Skipped = true
		res.SkipReason = SkipUnhandled
		log.DebugContext(ctx, "conversion sink does not handle event", logger.Sink(name))
	default:
		res.Err = err
		log.WarnContext(ctx, "conversion delivery failed",
			logger.Sink(name),
			logger.Duration(r.now().Sub(start)),
			logger.Error(err),
		)
	}
	return res
}
