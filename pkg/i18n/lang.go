package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when no supported language is detected.
const DefaultLanguage = "en"

// Header values longer than this are truncated before parsing.
const maxAcceptLanguageLength = 4096

// supported maps a primary language subtag to the funnel's language code.
var supported = map[string]string{
	"en": "en",
	"fr": "fr",
	"es": "es",
	"pt": "pt-br",
	"it": "it",
	"ja": "ja",
	"ru": "ru",
	"de": "de",
}

// Languages returns the supported language codes in a stable order.
func Languages() []string {
	langs := make([]string, 0, len(supported))
	for _, code := range supported {
		langs = append(langs, code)
	}
	slices.Sort(langs)
	return langs
}

// IsSupported reports whether code is one of Languages().
func IsSupported(code string) bool {
	for _, c := range supported {
		if c == code {
			return true
		}
	}
	return false
}

// Normalize maps a BCP 47 tag ("pt-PT", "DE", "en_US") to a supported code by its
// primary subtag. It returns false for unparseable or unsupported tags.
func Normalize(tag string) (string, bool) {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" || len(tag) > 35 {
		return "", false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := t.Base()
	code, ok := supported[base.String()]
	return code, ok
}

// Detect picks the first supported language from an Accept-Language header in
// quality order, comparing primary subtags only. Any Portuguese variant maps to pt-br.
// Malformed or unsupported headers yield DefaultLanguage.
func Detect(acceptLanguage string) string {
	if len(acceptLanguage) > maxAcceptLanguageLength {
		acceptLanguage = acceptLanguage[:maxAcceptLanguageLength]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return DefaultLanguage
	}
	for _, t := range tags {
		base, _ := t.Base()
		if code, ok := supported[base.String()]; ok {
			return code
		}
	}
	return DefaultLanguage
}

// TwoLetter returns the primary subtag of a supported code: "pt-br" becomes "pt".
// It is the form passed to the checkout locale, the CRM and the success URL.
func TwoLetter(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}
