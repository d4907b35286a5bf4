package checkout

import (
	"net/url"
)

// DefaultSuccessBase is where a finished checkout redirects.
const DefaultSuccessBase = "https://yes.onetake.ai/onboarding"

// SuccessURL builds the post-checkout redirect. The plan parameter is only
// present when the session resolved a catalog key.
func SuccessURL(base, email, lang2, priceID, planKey string) string {
	if base == "" {
		base = DefaultSuccessBase
	}
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: base}
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("language", lang2)
	q.Set("product", priceID)
	if planKey != "" {
		q.Set("plan", planKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
