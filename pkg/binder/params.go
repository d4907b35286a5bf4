package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Path fills `path`-tagged string fields using extractor, e.g. chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: nil extractor", ErrInvalidPath)
		}
		return bindStrings(v, "path", ErrInvalidPath, func(name string) string {
			return extractor(r, name)
		})
	}
}

// Query fills `query`-tagged string fields from the URL query.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindStrings(v, "query", ErrInvalidQuery, func(name string) string {
			return strings.TrimSpace(q.Get(name))
		})
	}
}

func bindStrings(v any, tag string, bindErr error, lookup func(string) string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil pointer to struct", bindErr)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		if field.Kind() != reflect.String {
			return fmt.Errorf("%w: field %s must be a string", bindErr, sf.Name)
		}
		if val := lookup(name); val != "" {
			field.SetString(val)
		}
	}
	return nil
}
