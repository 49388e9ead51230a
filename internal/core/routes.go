package core

import "github.com/go-chi/chi/v5"

// defaultRedactedHeaders lists header names whose values are masked in
// request logs. Stripe-Signature is included so webhook secrets cannot be
// correlated from logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
	"Stripe-Signature",
}

// MountRoutes registers the global middleware chain, the /api route group,
// and the top-level health check.
//
// Middleware order matters:
//  1. Recoverer       - outermost, catches all panics.
//  2. RequestID       - correlation ID before anything logs.
//  3. RequestLogger   - structured request logs (redacted headers).
//  4. CORS            - browser security headers.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))

	s.router.Route("/api", func(r chi.Router) {
		for _, registrar := range s.APIRouteRegistrars {
			registrar(r)
		}
	})

	s.router.Get("/health", s.HandleHealth)
}

// corsAllowedOrigins returns the CORS allow-list: the configured frontend
// origin, or a wildcard when none is configured.
func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && s.Config.Server.FrontendURL != "" {
		return []string{s.Config.Server.FrontendURL}
	}
	return []string{"*"}
}
