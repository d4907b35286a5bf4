package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/funnel/pkg/logger"
)

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	startHooks      []func(addr string)
	stopHooks       []func()
}

func defaultConfig() *config {
	return &config{
		addr:            ":8080",
		readTimeout:     15 * time.Second,
		shutdownTimeout: 10 * time.Second,
		logger:          logger.Discard(),
	}
}

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	cfg  *config
	once sync.Once

	mu  sync.Mutex
	srv *http.Server
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{cfg: cfg}
}

// Run serves handler until ctx is cancelled, a termination signal arrives or
// the listener fails. A nil handler serves 404 for every request.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.mu.Unlock()

	addr := ln.Addr().String()
	s.cfg.logger.InfoContext(ctx, "http server listening", slog.String("addr", addr))
	for _, h := range s.cfg.startHooks {
		h(addr)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-sigCtx.Done():
		s.cfg.logger.InfoContext(ctx, "http server shutting down")
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.cfg.logger.ErrorContext(ctx, "http server shutdown failed", logger.Error(err))
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown drains the server within the shutdown timeout and runs the stop
// hooks. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	var err error
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
		for _, h := range s.cfg.stopHooks {
			h()
		}
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
