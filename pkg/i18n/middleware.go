package i18n

import (
	"net/http"
)

// LangExtractor picks a language code for a request.
type LangExtractor func(r *http.Request) string

// DefaultLangExtractor honours an explicit ?lang= query parameter and falls back
// to the Accept-Language header.
func DefaultLangExtractor() LangExtractor {
	return func(r *http.Request) string {
		if code, ok := Normalize(r.URL.Query().Get("lang")); ok {
			return code
		}
		return Detect(r.Header.Get("Accept-Language"))
	}
}

// Middleware stores the detected language in the request context for GetLocale.
func Middleware(extr LangExtractor) func(http.Handler) http.Handler {
	if extr == nil {
		extr = DefaultLangExtractor()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := extr(r)
			if lang == "" {
				lang = DefaultLanguage
			}
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), lang)))
		})
	}
}
