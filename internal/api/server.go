// Package api exposes the HTTP surface: spreadsheet upload and
// reconciliation, campaign dispatch, and meeting recipient lookup.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/luminaed/atrium/internal/config"
	"github.com/luminaed/atrium/internal/pkg/logger"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	cfg config.ServerConfig
	srv *http.Server
}

// NewServer creates the API server around an already-built router.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: handler,
			// Uploads can be large and dispatch runs are paced; generous
			// write timeout on purpose.
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Info("api server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("api server shutting down")
	return s.srv.Shutdown(ctx)
}
