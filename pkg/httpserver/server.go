// Package httpserver runs the application's HTTP server with graceful
// shutdown and a composite health endpoint.
package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrServerClosed is returned by Run on clean shutdown.
var ErrServerClosed = http.ErrServerClosed

// Config is the HTTP server configuration surface.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Server wraps http.Server with context-driven graceful shutdown.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// Option configures a Server during construction.
type Option func(*Server)

// WithLogger sets the server's logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server for the given handler.
func New(cfg Config, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully
// within the configured timeout. Returns nil on clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening",
			slog.String("addr", s.cfg.Addr),
			slog.String("component", "httpserver"),
		)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down", slog.String("component", "httpserver"))
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return s.srv.Close()
	}
	return nil
}
