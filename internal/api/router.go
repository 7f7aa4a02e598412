// Package api provides HTTP router setup.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/database"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/metrics"
	"github.com/scamwatch/sentinel/internal/samples"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, engine *fraud.Engine, store database.Store, set *samples.Set) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(cfg, engine, store, set)

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", handler.Ping)
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			if cfg.Auth.Enabled {
				r.Use(AuthMiddleware(store))
			}
			r.Use(AuditMiddleware(store))
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			r.Route("/fraud", func(r chi.Router) {
				r.Get("/samples", handler.Samples)
				r.Post("/analyze", handler.Analyze)
				r.Post("/analyze-batch", handler.AnalyzeBatch)
			})

			r.Get("/audit", handler.GetAuditLogs)
		})

		// API key management. With auth off these are open, so keep the
		// service unexposed or behind a gateway.
		r.Route("/admin", func(r chi.Router) {
			if cfg.Auth.Enabled {
				r.Use(AuthMiddleware(store))
			}
			r.Use(AuditMiddleware(store))

			r.Post("/keys", handler.CreateAPIKey)
			r.Get("/keys", handler.ListAPIKeys)
			r.Delete("/keys/{id}", handler.DeleteAPIKey)
		})
	})

	return r
}
