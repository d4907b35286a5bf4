package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/funnel/pkg/binder"
)

// HandlerFunc handles a bound request.
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself to w.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind populates v from r. Binders return binder.ErrBinderNotApplicable to be skipped.
type Bind func(r *http.Request, v any) error

// ErrorHandler renders binding and rendering failures.
type ErrorHandler[C Context] func(ctx C, err error)

// Decorator wraps a HandlerFunc. The first decorator given is the outermost.
type Decorator[C Context, R any] func(HandlerFunc[C, R]) HandlerFunc[C, R]

// WrapOption configures Wrap.
type WrapOption[C Context, R any] func(*wrapConfig[C, R])

type wrapConfig[C Context, R any] struct {
	binders        []Bind
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
	decorators     []Decorator[C, R]
}

// WithBinders appends binders, applied in order.
func WithBinders[C Context, R any](binders ...Bind) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextFactory sets how C is built for a request. Required when C is
// not the default Context.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

// WithDecorators appends decorators.
func WithDecorators[C Context, R any](decorators ...Decorator[C, R]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// defaultErrorHandler renders the error as a JSON envelope.
func defaultErrorHandler[C Context](ctx C, err error) {
	_ = JSONError(err).Render(ctx.ResponseWriter(), ctx.Request())
}

// Wrap converts a HandlerFunc to an http.HandlerFunc.
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		errorHandler: defaultErrorHandler[C],
		contextFactory: func(w http.ResponseWriter, r *http.Request) C {
			c, ok := NewContext(w, r).(C)
			if !ok {
				panic("handler: custom context type requires WithContextFactory")
			}
			return c
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	final := h
	for i := len(cfg.decorators) - 1; i >= 0; i-- {
		final = cfg.decorators[i](final)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.contextFactory(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		resp := final(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
