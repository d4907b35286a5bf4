package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/funnel/pkg/binder"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/visitor"
)

// ErrorMapper translates a domain error into an error JSONError understands.
// It returns nil when it does not recognize err.
type ErrorMapper func(err error) error

// MapBinderErrors maps binding failures to 400 and 415.
func MapBinderErrors(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return fmt.Errorf("%w: %w", ErrUnsupportedMediaType, err)
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidPath), errors.Is(err, binder.ErrInvalidQuery):
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// Classify runs mappers in order and returns the first mapped error, or err.
func Classify(err error, mappers ...ErrorMapper) error {
	for _, m := range mappers {
		if mapped := m(err); mapped != nil {
			return mapped
		}
	}
	return err
}

// Status returns the status code JSONError would use for err.
func Status(err error) int {
	status := http.StatusInternalServerError
	errorToDetail(err, &status)
	return status
}

// NewErrorHandler returns an ErrorHandler that maps err, logs it with the
// request id at warn level for 4xx and error level for 5xx, and renders it as JSON.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	mappers = append([]ErrorMapper{MapBinderErrors}, mappers...)

	return func(ctx Context, err error) {
		mapped := Classify(err, mappers...)
		status := Status(mapped)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			slog.String("request_id", visitor.RequestID(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := JSONError(mapped).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
