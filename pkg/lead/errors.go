package lead

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var ErrInvalidForm = errors.New("invalid signup form")

// Translation keys for field errors.
const (
	KeyRequired = "error.required"
	KeyEmail    = "error.email"
	KeyUseCases = "error.useCases"
)

// FieldErrors maps a form field to the translation key of its error.
// It matches ErrInvalidForm with errors.Is.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := slices.Sorted(maps.Keys(fe))
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return ErrInvalidForm.Error() + ": " + strings.Join(parts, ", ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrInvalidForm
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}
