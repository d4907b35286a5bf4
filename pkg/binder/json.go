package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize caps JSON request bodies.
const DefaultMaxJSONSize = 1 << 20

// JSON decodes an application/json body into v, rejecting unknown fields and
// trailing data. Requests without a body are not applicable.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			return ErrBinderNotApplicable
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, contentType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidJSON, DefaultMaxJSONSize)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return ErrBinderNotApplicable
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		var extra json.RawMessage
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}
