// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/config"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/routing"
)

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/routing/status", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	// A caller-provided ID is preserved.
	r := httptest.NewRequest(http.MethodGet, "/routing/status", nil)
	r.Header.Set("X-Request-ID", "trace-me-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-ID"); got != "trace-me-123" {
		t.Errorf("expected the caller's request ID back, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/routing/status", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiting(t *testing.T) {
	svc := routing.New(routing.Options{DataDir: t.TempDir(), Logger: zerolog.Nop()})
	if err := svc.Load(); err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	cfg := &config.Config{}
	cfg.API.RateLimitPerMinute = 2
	h := NewRouter(svc, cfg).Setup()

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/routing/status", nil))
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 on the third request, got %d", last)
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	h := newTestServer(t)

	// Generate at least one observation first.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/routing/status", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "routing_decision_cache_misses_total") {
		t.Error("expected routing metric families in the scrape output")
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/routing/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
