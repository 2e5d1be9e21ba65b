/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web frontend

ROUTE GROUPS:
  /api/gifts/*      Gift, contribution, and settlement operations
  /api/accounts/*   Platform accounts and credit ledger
  /api/failures     Manual follow-up queue
  /api/scenarios/*  Demo data
  /metrics          Prometheus

SECURITY NOTE:
  No authentication middleware; the engine is deployed behind the
  platform's authenticated action layer.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Gift routes
		r.Route("/gifts", func(r chi.Router) {
			r.Get("/", h.ListGifts)
			r.Post("/", h.CreateGift)
			r.Get("/{id}", h.GetGift)
			r.Post("/{id}/contributions", h.CreateContribution)
			r.Get("/{id}/contributions", h.ListContributions)
			r.Post("/{id}/settle", h.Settle)
			r.Get("/{id}/settlements", h.ListSettlements)
		})

		// Account routes
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/{id}/credits", h.ListCredits)
		})

		// Operations routes
		r.Get("/failures", h.ListFailures)
		r.Post("/scenarios/load", h.LoadScenario)
	})

	// Prometheus
	r.Handle("/metrics", promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{}))

	return r
}
