// Package i18n detects the visitor's language and serves localized page copy.
//
// The funnel supports en, fr, es, pt-br, it, ja, ru and de. Detect parses an
// Accept-Language header with golang.org/x/text/language and matches on the
// primary subtag, so every Portuguese variant becomes pt-br and anything
// unsupported becomes en. TwoLetter converts a code to the two-letter form
// used by the checkout overlay locale, the CRM and the success redirect.
//
// Copy loads YAML files from the embedded locales directory. Each file is a
// map from language code to a tree of keys addressed with dots:
//
//	en:
//	  button:
//	    submit: Start my free trial
//
// T falls back to the default language and then to the key itself, so a
// missing translation never renders an empty label.
//
// Middleware stores the detected language in the request context; GetLocale
// reads it back.
package i18n
