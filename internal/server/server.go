// Package server provides the HTTP server for the FRED agent API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/enjojoy/fredagent/internal/jobs"
	"github.com/enjojoy/fredagent/internal/metrics"
	"github.com/enjojoy/fredagent/internal/server/cache"
	"github.com/enjojoy/fredagent/internal/server/handlers"
	"github.com/enjojoy/fredagent/internal/server/middleware"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	processor handlers.QueryProcessor
	finder    handlers.SeriesFinder
	cache     *cache.Cache
	jobs      *jobs.Store
	metrics   *metrics.Metrics
	limiter   *middleware.RateLimiter
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(processor handlers.QueryProcessor, finder handlers.SeriesFinder, cfg Config, logger *zerolog.Logger) *Server {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultConfig().QueryTimeout
	}

	s := &Server{
		processor: processor,
		finder:    finder,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		jobs:      jobs.NewStore(cfg.JobTTL),
		metrics:   metrics.New(),
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	return s
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// ListenAndServe runs the HTTP server until ctx is canceled, then drains
// connections gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", httpServer.Addr).
			Str("prefix", s.config.PathPrefix).
			Bool("auth", s.config.AuthEnabled).
			Bool("metrics", s.config.MetricsEnabled).
			Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	s.jobs.Close()
	if s.limiter != nil {
		s.limiter.Close()
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		return err
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Jobs returns the server's job store.
func (s *Server) Jobs() *jobs.Store {
	return s.jobs
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
