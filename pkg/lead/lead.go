package lead

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names as they appear in JSON and in FieldErrors.
const (
	FieldFirstName      = "first_name"
	FieldEmail          = "email"
	FieldUseCases       = "use_cases"
	FieldUsageFrequency = "usage_frequency"
)

// Form is the signup form as submitted.
type Form struct {
	FirstName      string   `json:"first_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	UseCases       []string `json:"use_cases" validate:"min=1"`
	UsageFrequency string   `json:"usage_frequency" validate:"required"`
}

// Lead is a validated form.
type Lead struct {
	FirstName      string   `json:"first_name"`
	Email          string   `json:"email"`
	UseCases       []string `json:"use_cases"`
	UsageFrequency string   `json:"usage_frequency"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims every field and drops blank or repeated use cases.
func (f Form) Normalize() Form {
	out := Form{
		FirstName:      strings.TrimSpace(f.FirstName),
		Email:          strings.TrimSpace(f.Email),
		UsageFrequency: strings.TrimSpace(f.UsageFrequency),
	}
	seen := make(map[string]struct{}, len(f.UseCases))
	for _, uc := range f.UseCases {
		uc = strings.TrimSpace(uc)
		if uc == "" {
			continue
		}
		if _, dup := seen[uc]; dup {
			continue
		}
		seen[uc] = struct{}{}
		out.UseCases = append(out.UseCases, uc)
	}
	return out
}

// Validate normalizes the form and returns the lead, or FieldErrors.
func (f Form) Validate() (Lead, error) {
	n := f.Normalize()
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Lead{}, errors.Join(ErrInvalidForm, err)
		}
		fe := make(FieldErrors, len(verrs))
		for _, e := range verrs {
			field := e.Field()
			if _, exists := fe[field]; exists {
				continue
			}
			fe[field] = translationKey(field, e.Tag())
		}
		return Lead{}, fe
	}
	return Lead(n), nil
}

func translationKey(field, tag string) string {
	switch {
	case field == FieldUseCases:
		return KeyUseCases
	case tag == "email":
		return KeyEmail
	default:
		return KeyRequired
	}
}

// IsICP reports whether the lead matches the ideal customer profile.
func (l Lead) IsICP() bool {
	return IsICP(l.UseCases)
}

// IsICP is false when any use case contains "music" or "personal".
func IsICP(useCases []string) bool {
	for _, uc := range useCases {
		uc = strings.ToLower(uc)
		if strings.Contains(uc, "music") || strings.Contains(uc, "personal") {
			return false
		}
	}
	return true
}
