// Package http assembles the REST API of the compliance service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/complyhub/gst-sentinel/internal/interfaces/http/handlers"
	"github.com/complyhub/gst-sentinel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware that make up the route
// tree.  Nil handlers leave their routes unregistered, so the worker's small
// health server and the full API server share this constructor.
type RouterConfig struct {
	ClientHandler *handlers.ClientHandler
	RiskHandler   *handlers.RiskHandler
	JobHandler    *handlers.JobHandler
	HealthHandler *handlers.HealthHandler

	AuthMiddleware    *middleware.AuthMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware

	// MetricsHandler serves GET /metrics (the Prometheus registry handler).
	MetricsHandler http.Handler
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-By"},
		MaxAge:         300,
	}))
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}

	// Probes and metrics stay outside the token guard.
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.Handler)
		}

		if cfg.ClientHandler != nil {
			api.Route("/clients", func(cr chi.Router) {
				cr.Get("/", cfg.ClientHandler.List)
				cr.Post("/", cfg.ClientHandler.Create)

				cr.Route("/{clientId}", func(item chi.Router) {
					item.Get("/", cfg.ClientHandler.Get)
					item.Get("/filings", cfg.ClientHandler.ListFilings)
					item.Post("/filings", cfg.ClientHandler.AddFiling)

					if cfg.RiskHandler != nil {
						item.Get("/risk", cfg.RiskHandler.GetRisk)
						item.Post("/assess", cfg.RiskHandler.Assess)
					}
				})
			})
		}

		if cfg.RiskHandler != nil {
			api.Post("/assessments/run", cfg.RiskHandler.RunBatch)
		}

		if cfg.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				jr.Get("/", cfg.JobHandler.List)
				jr.Get("/{jobId}", cfg.JobHandler.Get)
			})
		}
	})

	return r
}
