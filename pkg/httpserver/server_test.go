package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/httpserver"
)

func runAsync(t *testing.T, ctx context.Context, srv *httpserver.Server, h http.Handler) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err, "run")
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	t.Parallel()

	addrCh := make(chan string, 1)
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStartHook(func(addr string) { addrCh <- addr }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := runAsync(t, ctx, srv, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	addr := <-addrCh
	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	waitDone(t, done)
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown after run is a no-op")
}

func TestShutdownRunsStopHooksOnce(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var stops atomic.Int32
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(string) { close(started) }),
		httpserver.WithStopHook(func() { stops.Add(1) }),
	)
	done := runAsync(t, context.Background(), srv, nil)
	<-started

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	waitDone(t, done)
	assert.Equal(t, int32(1), stops.Load())
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New().Shutdown(context.Background()))
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	t.Run("bad address", func(t *testing.T) {
		t.Parallel()
		err := httpserver.New(httpserver.WithAddr(":invalid")).Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("address in use", func(t *testing.T) {
		t.Parallel()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		err = httpserver.New(httpserver.WithAddr(ln.Addr().String())).Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("already running", func(t *testing.T) {
		t.Parallel()
		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithAddr("127.0.0.1:0"),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(string) { close(started) }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		done := runAsync(t, ctx, srv, nil)
		<-started

		err := srv.Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
		assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

		cancel()
		waitDone(t, done)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	addrCh := make(chan string, 1)
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: 50 * time.Millisecond,
	}, httpserver.WithStartHook(func(addr string) { addrCh <- addr }))

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(t, ctx, srv, nil)
	addr := <-addrCh
	assert.Contains(t, addr, "127.0.0.1:")

	cancel()
	waitDone(t, done)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"write", func() { httpserver.WithWriteTimeout(0) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(0) }},
		{"start hook", func() { httpserver.WithStartHook(nil) }},
		{"stop hook", func() { httpserver.WithStopHook(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}
	assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
}

func TestHealth(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) httpserver.HealthReport {
		t.Helper()
		var report httpserver.HealthReport
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
		return report
	}

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		httpserver.Health(nil)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "alive", decode(t, rec).Status)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := httpserver.Health(nil, httpserver.Check{Name: "store", Fn: func(context.Context) error { return nil }})
		h(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		report := decode(t, rec)
		assert.Equal(t, "ready", report.Status)
		assert.Equal(t, "ok", report.Checks["store"])
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := httpserver.Health(nil,
			httpserver.Check{Name: "store", Fn: func(context.Context) error { return nil }},
			httpserver.Check{Name: "kafka", Fn: func(context.Context) error { return errors.New("no brokers") }},
		)
		h(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		report := decode(t, rec)
		assert.Equal(t, "not_ready", report.Status)
		assert.Equal(t, "no brokers", report.Checks["kafka"])
		assert.Equal(t, "ok", report.Checks["store"])
	})
}
