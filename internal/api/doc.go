// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

// Package api exposes the routing engine over HTTP.
//
// All routing endpoints live under /routing and answer the standard
// envelope from response.go. Health probes live under /api/v1/health and
// Prometheus metrics at /metrics. Routing is built on chi with
// production-hardened middleware from its ecosystem (go-chi/cors,
// go-chi/httprate).
package api
