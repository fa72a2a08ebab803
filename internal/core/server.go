// Package core provides the API chassis for the MaizeCast service.
// It creates a chi router compatible with both standard HTTP (for local dev)
// and AWS Lambda Proxy Integration. It enforces cross-cutting concerns --
// logging, observability, rate limiting, and error handling -- before
// requests reach domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"maizecast/internal/config"
	"maizecast/internal/types"
)

// Server encapsulates all dependencies for the MaizeCast API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// Domain dependencies. Handlers reach these through the registrar
	// closures wired by the application entry point; the chassis itself
	// only needs them for health probing and shutdown.
	History   types.HistoryStore
	Predictor types.Predictor

	// HealthProbes are executed concurrently by the /health endpoint.
	HealthProbes []HealthProbe

	// V1RouteRegistrars attach domain handler routes under /api/v1.
	// Populated by the application entry point to avoid import cycles
	// between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	// Internal router
	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a "fail-fast" check on critical
// configuration.
//
// The caller is responsible for mounting routes (via MountRoutes or equivalent)
// after construction. This separation allows tests to customize route
// registration.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	validator, err := NewValidator(logger)
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: validator,
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
// Used by http.ListenAndServe (local) and the Lambda adapter.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
// This is used internally by route-mounting methods and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources.
// It closes the history store's connection pool if the implementation
// supports it. Log flushing is slog's responsibility; the default JSON
// handler writes synchronously.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	if closer, ok := s.History.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.Logger.Error("error closing history store", "error", err)
			return fmt.Errorf("closing history store: %w", err)
		}
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
