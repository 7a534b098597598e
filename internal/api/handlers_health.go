// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package api

import (
	"net/http"
	"time"
)

// HealthLive handles GET /api/v1/health/live. Liveness is unconditional:
// if this handler runs, the process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// HealthReady handles GET /api/v1/health/ready. The engine is ready once
// its documents are loaded, which New+Load guarantee before the server
// starts; readiness therefore reports engine state rather than gating it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := h.svc.CurrentStatus()
	WriteSuccess(w, r, map[string]interface{}{
		"status":            "ready",
		"engine_enabled":    status.Enabled,
		"policies":          len(status.Policies),
		"refresher_running": status.RefresherRunning,
		"timestamp":         time.Now().UTC(),
	})
}
