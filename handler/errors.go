package handler

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict             = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity  = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests      = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable   = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

// ValidationError maps field names to messages. It renders as 422.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, field := range slices.Sorted(maps.Keys(e)) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
