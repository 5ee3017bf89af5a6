// Package server exposes the betting API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gridiron/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Server owns the HTTP listener and the rate limiter's collector
type Server struct {
	httpServer *http.Server
	limiter    *RateLimiter
}

// New builds the server from configuration
func New(cfg *config.Config, h *Handler) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := NewRateLimiter(rate.Limit(cfg.HTTPRateLimit), cfg.HTTPRateBurst, 2*time.Minute)
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           NewRouter(h, limiter),
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiter: limiter,
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
