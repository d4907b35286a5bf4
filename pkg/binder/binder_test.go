package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/binder"
)

type request struct {
	ID      string   `path:"id"`
	Plan    string   `query:"plan"`
	Skipped string   `query:"-"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
}

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()
		var req request
		require.NoError(t, bind(jsonRequest(`{"name":"Ana","tags":["a"]}`), &req))
		assert.Equal(t, "Ana", req.Name)
		assert.Equal(t, []string{"a"}, req.Tags)
	})

	t.Run("empty body is not applicable", func(t *testing.T) {
		t.Parallel()
		var req request
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		assert.ErrorIs(t, bind(r, &req), binder.ErrBinderNotApplicable)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()
		var req request
		assert.ErrorIs(t, bind(jsonRequest(`{"nope":1}`), &req), binder.ErrInvalidJSON)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		t.Parallel()
		var req request
		assert.ErrorIs(t, bind(jsonRequest(`{"name":"a"}{"name":"b"}`), &req), binder.ErrInvalidJSON)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		var req request
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")
		assert.ErrorIs(t, bind(r, &req), binder.ErrUnsupportedMediaType)
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()
		var req request
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		assert.ErrorIs(t, bind(r, &req), binder.ErrMissingContentType)
	})

	t.Run("oversized body", func(t *testing.T) {
		t.Parallel()
		var req request
		body := `{"name":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`
		assert.ErrorIs(t, bind(jsonRequest(body), &req), binder.ErrInvalidJSON)
	})
}

func TestPathAndQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?plan=+pro-yearly-trial+&Skipped=x", nil)
	var req request

	path := binder.Path(func(_ *http.Request, name string) string {
		if name == "id" {
			return "sess-1"
		}
		return ""
	})
	require.NoError(t, path(r, &req))
	require.NoError(t, binder.Query()(r, &req))

	assert.Equal(t, "sess-1", req.ID)
	assert.Equal(t, "pro-yearly-trial", req.Plan)
	assert.Empty(t, req.Skipped)

	assert.ErrorIs(t, binder.Path(nil)(r, &req), binder.ErrInvalidPath)
	assert.ErrorIs(t, binder.Query()(r, req), binder.ErrInvalidQuery)

	type bad struct {
		N int `query:"n"`
	}
	assert.ErrorIs(t, binder.Query()(r, &bad{}), binder.ErrInvalidQuery)
}
