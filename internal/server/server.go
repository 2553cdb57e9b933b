package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
)

// RequestObserver receives one observation per finished request
type RequestObserver func(r *http.Request, route string, status int, duration time.Duration, cacheHit bool)

// Server owns the HTTP listener and the middleware chain
type Server struct {
	config     *common.Config
	logger     arbor.ILogger
	httpServer *http.Server
	draining   atomic.Bool
}

// New creates the server with its full middleware chain. The observer
// is optional; pass nil to skip request metrics.
func New(cfg *common.Config, h *Handlers, observe RequestObserver, logger arbor.ILogger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
	}

	chain := []middleware{
		recoveryMiddleware(logger),
		requestIDMiddleware(),
		corsMiddleware(),
		loggingMiddleware(logger),
	}
	if observe != nil {
		chain = append(chain, metricsMiddleware(observe))
	}
	if cfg.RateLimit.Enabled {
		chain = append(chain, rateLimitMiddleware(&cfg.RateLimit, logger))
	}
	chain = append(chain, s.drain())

	handler := withMiddleware(buildRouter(h), chain...)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) drain() middleware {
	return drainMiddleware(func() bool { return s.draining.Load() })
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving requests until the listener closes
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the listener. New
// requests are rejected with 503 while the drain is in progress.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
