package handler

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
)

// JSONResponse is the envelope of every JSON response.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j *jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// WithJSONMeta sets the meta object.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) { r.body.Meta = meta }
}

// JSON renders v as the data of a 200 response.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}
	r.body.Data = v
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err as the error of the envelope. The status follows
// HTTPError and ValidationError found in err's chain, else 500.
func JSONError(err error, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}
	r.body.Error = errorToDetail(err, &r.status)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func errorToDetail(err error, status *int) *ErrorDetail {
	var verr ValidationError
	if errors.As(err, &verr) {
		*status = http.StatusUnprocessableEntity
		detail := &ErrorDetail{Code: "validation_error", Message: "validation failed"}
		if len(verr) > 0 {
			detail.Details = maps.Clone(verr)
		}
		return detail
	}

	var herr HTTPError
	if errors.As(err, &herr) {
		*status = herr.Code
		return &ErrorDetail{Code: herr.Key, Message: http.StatusText(herr.Code)}
	}

	*status = http.StatusInternalServerError
	return &ErrorDetail{Code: ErrInternalServerError.Key, Message: http.StatusText(http.StatusInternalServerError)}
}
