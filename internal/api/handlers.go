// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/logging"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/routing"
)

// defaultSimulateMaxRequests caps simulation size when no limit is
// configured.
const defaultSimulateMaxRequests = 10000

// Handler answers the /routing endpoints against one routing service.
type Handler struct {
	svc                 *routing.Service
	simulateMaxRequests int
}

// NewHandler creates a handler. simulateMax bounds POST /routing/simulate;
// zero or negative selects the built-in default.
func NewHandler(svc *routing.Service, simulateMax int) *Handler {
	if simulateMax <= 0 {
		simulateMax = defaultSimulateMaxRequests
	}
	return &Handler{svc: svc, simulateMaxRequests: simulateMax}
}

// Status handles GET /routing/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.CurrentStatus())
}

// Decide handles POST /routing/decision. The decision contract is total:
// a malformed body degrades to an empty request rather than an error, so
// the caller always receives a usable backend.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	var req routing.RoutingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Debug().Err(err).Msg("unparseable decision request, using defaults")
		req = routing.RoutingRequest{}
	}

	// RealIP middleware has already folded X-Forwarded-For into RemoteAddr.
	if req.ClientIP == "" && req.ClientRegion == "" {
		req.ClientIP = remoteHost(r)
	}

	WriteSuccess(w, r, h.svc.Decide(&req))
}

// Config handles GET /routing/config.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Config())
}

// UpdateConfig handles PUT /routing/config.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg routing.GlobalConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.svc.UpdateConfig(&cfg); err != nil {
		NewResponseWriter(w, r).ValidationError("configuration rejected", err.Error())
		return
	}
	WriteSuccess(w, r, cfg)
}

// Policies handles GET /routing/policies.
func (h *Handler) Policies(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Policies())
}

// Policy handles GET /routing/policies/{name}.
func (h *Handler) Policy(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.svc.Policy(name)
	if err != nil {
		WriteNotFound(w, r, "policy not found: "+name)
		return
	}
	WriteSuccess(w, r, p)
}

// CreatePolicy handles POST /routing/policies.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var p routing.RoutingPolicy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.svc.UpsertPolicy(&p); err != nil {
		NewResponseWriter(w, r).ValidationError("policy rejected", err.Error())
		return
	}
	NewResponseWriter(w, r).Created(p)
}

// UpdatePolicy handles PUT /routing/policies/{name}. The path name wins
// over any name in the body.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var p routing.RoutingPolicy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}
	p.Name = chi.URLParam(r, "name")

	if err := h.svc.UpsertPolicy(&p); err != nil {
		NewResponseWriter(w, r).ValidationError("policy rejected", err.Error())
		return
	}
	WriteSuccess(w, r, p)
}

// DeletePolicy handles DELETE /routing/policies/{name}.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	switch err := h.svc.DeletePolicy(name); {
	case errors.Is(err, routing.ErrDefaultPolicyDelete):
		WriteBadRequest(w, r, "cannot delete the default policy; change the default first")
	case errors.Is(err, routing.ErrPolicyNotFound):
		WriteNotFound(w, r, "policy not found: "+name)
	case err != nil:
		NewResponseWriter(w, r).InternalError("failed to delete policy")
	default:
		NewResponseWriter(w, r).NoContent()
	}
}

// Regions handles GET /routing/regions.
func (h *Handler) Regions(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Regions())
}

// Metrics handles GET /routing/metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.PerformanceAll())
}

// MetricsForBackend handles GET /routing/metrics/{backend}.
func (h *Handler) MetricsForBackend(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")
	m, err := h.svc.PerformanceFor(backend)
	if err != nil {
		WriteNotFound(w, r, "backend not found: "+backend)
		return
	}
	WriteSuccess(w, r, m)
}

// Statistics handles GET /routing/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Statistics())
}

// contentTypeAnalysisRequest is the body for POST /routing/content-type-analysis.
type contentTypeAnalysisRequest struct {
	ContentType string            `json:"content_type"`
	SizeBytes   int64             `json:"size_bytes,omitempty"`
	Operation   routing.Operation `json:"operation,omitempty"`
}

// ContentTypeAnalysis handles POST /routing/content-type-analysis.
func (h *Handler) ContentTypeAnalysis(w http.ResponseWriter, r *http.Request) {
	var req contentTypeAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.ContentType == "" {
		WriteBadRequest(w, r, "content_type is required")
		return
	}

	WriteSuccess(w, r, h.svc.AnalyzeContentType(req.ContentType, req.SizeBytes, req.Operation))
}

// simulateRequest is the body for POST /routing/simulate.
type simulateRequest struct {
	Requests int `json:"requests"`
}

// Simulate handles POST /routing/simulate.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	req := simulateRequest{Requests: 100}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteBadRequest(w, r, "invalid JSON body")
			return
		}
	}
	if req.Requests <= 0 {
		WriteBadRequest(w, r, "requests must be positive")
		return
	}
	if req.Requests > h.simulateMaxRequests {
		WriteBadRequest(w, r, "requests exceeds the configured maximum")
		return
	}

	WriteSuccess(w, r, h.svc.Simulate(req.Requests))
}

// UpdateMetrics handles POST /routing/update-metrics: one synchronous
// refresh cycle.
func (h *Handler) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	h.svc.RefreshMetricsNow(r.Context())
	WriteSuccess(w, r, h.svc.PerformanceAll())
}

// ClearCache handles POST /routing/clear-cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache()
	WriteSuccess(w, r, map[string]bool{"cleared": true})
}

// StartBackgroundTasks handles POST /routing/start-background-tasks.
// Idempotent: a second call reports started=false.
func (h *Handler) StartBackgroundTasks(w http.ResponseWriter, r *http.Request) {
	started := h.svc.StartBackgroundTasks()
	WriteSuccess(w, r, map[string]bool{"started": started})
}

// remoteHost strips the port from RemoteAddr, tolerating bare hosts.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
