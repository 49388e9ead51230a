// Package core provides the API chassis for the brandgate service: a chi
// router with cross-cutting middleware (recovery, request IDs, structured
// logging, CORS), the response envelope, and request validation. Domain
// handlers are mounted by the application entry point.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/config"
)

// RouteRegistrar mounts a domain handler's routes onto the router. The
// indirection keeps core free of imports on the handler packages.
type RouteRegistrar func(r chi.Router)

// Server bundles the dependencies of the HTTP layer so tests can construct it
// with fakes and production with real services.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// APIRouteRegistrars are mounted under /api by MountRoutes.
	APIRouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer initializes the chassis and prepares the server for route
// mounting. The caller mounts routes via MountRoutes after registering
// domain handlers.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for use with http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
