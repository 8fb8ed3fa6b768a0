// Package server exposes the analyst over HTTP. Every request is answered
// from scratch; nothing is shared between requests except metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/runlog"
	"equity-analyst/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators of a Server. A nil Recorder gets a fresh one.
type Deps struct {
	Analyst  interfaces.Analyst
	RunLog   *runlog.Log
	Recorder *Recorder
}

type Server struct {
	echo     *echo.Echo
	cfg      store.ServerConfig
	analyst  interfaces.Analyst
	runlog   *runlog.Log
	recorder *Recorder
}

func New(cfg store.ServerConfig, d Deps) *Server {
	if d.Recorder == nil {
		d.Recorder = NewRecorder()
	}
	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		analyst:  d.Analyst,
		runlog:   d.RunLog,
		recorder: d.Recorder,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(requestID())
	s.echo.Use(observe(s.recorder))
	s.echo.Use(recoverer())

	s.echo.GET("/healthz", s.healthz)
	s.echo.POST("/v1/parse", s.parse)
	s.echo.POST("/v1/ask", s.ask)
	s.echo.GET("/metrics", echo.WrapHandler(s.recorder.Handler()))
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.cfg.Addr())
		if err := s.echo.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info(ctx, "HTTP server stopped")
	return nil
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.cfg.RequestTimeoutSeconds) * time.Second
}
