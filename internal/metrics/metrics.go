// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

// Package metrics provides Prometheus instrumentation for the routing
// engine: decision throughput and latency, cache efficiency, refresher
// cycles, and HTTP surface metrics. Exposed on GET /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Decision path metrics
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Total routing decisions, by primary backend and applied policy",
		},
		[]string{"backend", "policy"},
	)

	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routing_decision_duration_seconds",
			Help:    "Duration of routing decision computation in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	DecisionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_decision_fallbacks_total",
			Help: "Total decisions answered by the fallback path after an internal error",
		},
	)

	// Decision cache metrics
	DecisionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_decision_cache_hits_total",
			Help: "Total decision cache hits",
		},
	)

	DecisionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_decision_cache_misses_total",
			Help: "Total decision cache misses",
		},
	)

	// Metrics refresher
	RefreshCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_metrics_refresh_cycles_total",
			Help: "Total performance metrics refresh cycles, by outcome",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	// HTTP surface
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routing_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// ObserveDecision records one newly computed decision.
func ObserveDecision(backend, policy string, duration time.Duration) {
	DecisionsTotal.WithLabelValues(backend, policy).Inc()
	DecisionDuration.Observe(duration.Seconds())
}

// ObserveHTTPRequest records one HTTP request against the routing surface.
func ObserveHTTPRequest(path, method string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(path, method, strconv.Itoa(status)).Observe(duration.Seconds())
}
