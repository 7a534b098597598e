// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/config"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/routing"
)

// Router wires the routing service to its HTTP surface.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router for the given service and configuration.
func NewRouter(svc *routing.Service, cfg *config.Config) *Router {
	mwConfig := DefaultMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.API.CORSOrigins
		if cfg.API.RateLimitPerMinute > 0 {
			mwConfig.RateLimitRequests = cfg.API.RateLimitPerMinute
			mwConfig.RateLimitWindow = time.Minute
		}
	}

	simulateMax := 0
	if cfg != nil {
		simulateMax = cfg.Engine.SimulateMaxRequests
	}

	return &Router{
		handler:    NewHandler(svc, simulateMax),
		middleware: NewMiddleware(mwConfig),
	}
}

// Setup builds the full HTTP handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health probes: permissive rate limiting for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(SecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Routing engine endpoints.
	r.Route("/routing", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/status", router.handler.Status)
		r.Post("/decision", router.handler.Decide)

		r.Get("/config", router.handler.Config)
		r.Put("/config", router.handler.UpdateConfig)

		r.Get("/policies", router.handler.Policies)
		r.Post("/policies", router.handler.CreatePolicy)
		r.Get("/policies/{name}", router.handler.Policy)
		r.Put("/policies/{name}", router.handler.UpdatePolicy)
		r.Delete("/policies/{name}", router.handler.DeletePolicy)

		r.Get("/regions", router.handler.Regions)
		r.Get("/metrics", router.handler.Metrics)
		r.Get("/metrics/{backend}", router.handler.MetricsForBackend)
		r.Get("/statistics", router.handler.Statistics)

		r.Post("/content-type-analysis", router.handler.ContentTypeAnalysis)
		r.Post("/simulate", router.handler.Simulate)
		r.Post("/update-metrics", router.handler.UpdateMetrics)
		r.Post("/clear-cache", router.handler.ClearCache)
		r.Post("/start-background-tasks", router.handler.StartBackgroundTasks)
	})

	return r
}
