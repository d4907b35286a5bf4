package checkout_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/checkout"
)

func TestSuccessURL(t *testing.T) {
	t.Parallel()

	raw := checkout.SuccessURL("", "ana+1@example.com", "pt", "pri_123", "pro-yearly-trial")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "yes.onetake.ai", u.Host)
	assert.Equal(t, "/onboarding", u.Path)
	q := u.Query()
	assert.Equal(t, "ana+1@example.com", q.Get("email"))
	assert.Equal(t, "pt", q.Get("language"))
	assert.Equal(t, "pri_123", q.Get("product"))
	assert.Equal(t, "pro-yearly-trial", q.Get("plan"))
}

func TestSuccessURL_NoPlanKey(t *testing.T) {
	t.Parallel()

	raw := checkout.SuccessURL("https://example.com/welcome?src=ads", "a@b.co", "en", "xyz123", "")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "ads", q.Get("src"))
	assert.Equal(t, "xyz123", q.Get("product"))
	assert.False(t, q.Has("plan"))
}
