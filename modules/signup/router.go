package signup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/funnel/handler"
	"github.com/dmitrymomot/funnel/pkg/binder"
	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/ratelimiter"
	"github.com/dmitrymomot/funnel/pkg/visitor"
	"github.com/dmitrymomot/funnel/svc/funnel"
)

// Funnel is the session service behind the API.
type Funnel interface {
	Start(ctx context.Context, entry funnel.Entry) (*funnel.Session, error)
	Session(ctx context.Context, id string) (*funnel.Session, error)
	Submit(ctx context.Context, id string, form lead.Form) (*funnel.SubmitResult, error)
	HandleSignal(ctx context.Context, id string, sig checkout.Signal) (*funnel.Outcome, error)
	AcceptOffer(ctx context.Context, id string) (*funnel.SubmitResult, error)
	DismissOffer(ctx context.Context, id string) (*funnel.Outcome, error)
	HandleNotification(ctx context.Context, n *checkout.Notification) (*funnel.Outcome, error)
}

// RouterOptions configures the signup module.
type RouterOptions struct {
	Funnel Funnel
	Copy   *i18n.Copy
	// Notifications verifies Paddle webhooks per environment. Environments
	// without a parser answer 404.
	Notifications map[environment.Environment]*checkout.NotificationParser
	Logger        *slog.Logger
	// Limiter throttles session creation and submission per client IP. Nil disables it.
	Limiter *ratelimiter.Limiter
}

type module struct {
	funnel        Funnel
	copy          *i18n.Copy
	notifications map[environment.Environment]*checkout.NotificationParser
	logger        *slog.Logger
	errorHandler  handler.ErrorHandler[handler.Context]
}

// Router builds the signup API router.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	texts := opts.Copy
	if texts == nil {
		texts = i18n.MustLoadCopy()
	}
	m := &module{
		funnel:        opts.Funnel,
		copy:          texts,
		notifications: opts.Notifications,
		logger:        log.With(logger.Component("signup")),
	}
	m.errorHandler = handler.NewErrorHandler(m.logger, mapFunnelErrors)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(visitor.Middleware)
	r.Use(i18n.Middleware(i18n.DefaultLangExtractor()))

	throttle := ratelimiter.Middleware(opts.Limiter, ratelimiter.ByClientIP,
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			_ = handler.JSONError(handler.ErrTooManyRequests).Render(w, req)
		}))

	r.With(throttle).Post("/sessions", handler.Wrap(m.start,
		handler.WithBinders[handler.Context, StartRequest](binder.Query(), binder.JSON()),
		handler.WithErrorHandler[handler.Context, StartRequest](m.errorHandler),
	))

	r.Route("/sessions/{id}", func(s chi.Router) {
		s.Get("/", handler.Wrap(m.show,
			handler.WithBinders[handler.Context, SessionRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, SessionRequest](m.errorHandler),
		))
		s.With(throttle).Post("/submit", handler.Wrap(m.submit,
			handler.WithBinders[handler.Context, SubmitRequest](binder.Path(chi.URLParam), binder.JSON()),
			handler.WithErrorHandler[handler.Context, SubmitRequest](m.errorHandler),
		))
		s.Post("/signals", handler.Wrap(m.signal,
			handler.WithBinders[handler.Context, SessionRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, SessionRequest](m.errorHandler),
		))
		s.Post("/offer/accept", handler.Wrap(m.acceptOffer,
			handler.WithBinders[handler.Context, SessionRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, SessionRequest](m.errorHandler),
		))
		s.Post("/offer/dismiss", handler.Wrap(m.dismissOffer,
			handler.WithBinders[handler.Context, SessionRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, SessionRequest](m.errorHandler),
		))
	})

	r.Post("/paddle/{env}/notifications", handler.Wrap(m.notification,
		handler.WithBinders[handler.Context, NotificationRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, NotificationRequest](m.errorHandler),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.JSONError(handler.ErrNotFound).Render(w, r)
	})
	return r
}
