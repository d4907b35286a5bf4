package lead_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/lead"
)

func validForm() lead.Form {
	return lead.Form{
		FirstName:      "Ada",
		Email:          "ada@example.com",
		UseCases:       []string{"marketing", "training"},
		UsageFrequency: "weekly",
	}
}

func TestForm_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid form is normalized", func(t *testing.T) {
		t.Parallel()
		f := lead.Form{
			FirstName:      "  Ada ",
			Email:          " ada@example.com ",
			UseCases:       []string{" marketing", "", "marketing", "training "},
			UsageFrequency: " weekly",
		}
		l, err := f.Validate()
		require.NoError(t, err)
		assert.Equal(t, lead.Lead{
			FirstName:      "Ada",
			Email:          "ada@example.com",
			UseCases:       []string{"marketing", "training"},
			UsageFrequency: "weekly",
		}, l)
	})

	tests := []struct {
		name   string
		mutate func(*lead.Form)
		want   lead.FieldErrors
	}{
		{"missing first name", func(f *lead.Form) { f.FirstName = "  " }, lead.FieldErrors{lead.FieldFirstName: lead.KeyRequired}},
		{"missing email", func(f *lead.Form) { f.Email = "" }, lead.FieldErrors{lead.FieldEmail: lead.KeyRequired}},
		{"malformed email", func(f *lead.Form) { f.Email = "ada@" }, lead.FieldErrors{lead.FieldEmail: lead.KeyEmail}},
		{"no use cases", func(f *lead.Form) { f.UseCases = nil }, lead.FieldErrors{lead.FieldUseCases: lead.KeyUseCases}},
		{"blank use cases", func(f *lead.Form) { f.UseCases = []string{" ", ""} }, lead.FieldErrors{lead.FieldUseCases: lead.KeyUseCases}},
		{"missing usage frequency", func(f *lead.Form) { f.UsageFrequency = "" }, lead.FieldErrors{lead.FieldUsageFrequency: lead.KeyRequired}},
		{"everything missing", func(f *lead.Form) { *f = lead.Form{} }, lead.FieldErrors{
			lead.FieldFirstName:      lead.KeyRequired,
			lead.FieldEmail:          lead.KeyRequired,
			lead.FieldUseCases:       lead.KeyUseCases,
			lead.FieldUsageFrequency: lead.KeyRequired,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := validForm()
			tt.mutate(&f)
			_, err := f.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, lead.ErrInvalidForm)

			var fe lead.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.want, fe)
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	t.Parallel()

	fe := lead.FieldErrors{lead.FieldEmail: lead.KeyEmail, lead.FieldFirstName: lead.KeyRequired}
	assert.Equal(t, "invalid signup form: email: error.email, first_name: error.required", fe.Error())
	assert.True(t, fe.Has(lead.FieldEmail))
	assert.False(t, fe.Has(lead.FieldUseCases))
}

func TestIsICP(t *testing.T) {
	t.Parallel()

	assert.True(t, lead.IsICP([]string{"marketing", "training"}))
	assert.True(t, lead.IsICP(nil))
	assert.False(t, lead.IsICP([]string{"marketing", "music_videos"}))
	assert.False(t, lead.IsICP([]string{"Personal projects"}))

	l := lead.Lead{UseCases: []string{"personal"}}
	assert.False(t, l.IsICP())
}
