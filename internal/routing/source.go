// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// MetricsSource produces a fresh performance document for the backends
// currently marked available. Implementations must return bounded,
// non-negative figures with availability clamped to at most 100%.
//
// Refresh must not mutate current; it returns a new document covering at
// least the listed backends.
type MetricsSource interface {
	Refresh(ctx context.Context, current map[string]PerformanceMetrics, available []string) (map[string]PerformanceMetrics, error)
}

// SyntheticSource perturbs the current figures with bounded random drift.
// It stands in for a real telemetry feed in demos and tests.
type SyntheticSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticSource creates a drift source. A zero seed selects a fixed
// default so demo runs are reproducible.
func NewSyntheticSource(seed int64) *SyntheticSource {
	if seed == 0 {
		seed = 42
	}
	return &SyntheticSource{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // drift simulation, not security
	}
}

// Refresh perturbs latency and throughput by roughly ±10-15% and
// availability/error rate by smaller bounded amounts for every available
// backend. Backends absent from current start from the unknown-backend
// baseline.
func (s *SyntheticSource) Refresh(_ context.Context, current map[string]PerformanceMetrics, available []string) (map[string]PerformanceMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]PerformanceMetrics, len(current))
	for name, m := range current {
		next[name] = m
	}

	for _, name := range available {
		m, ok := next[name]
		if !ok {
			m = unknownBackendMetrics
		}

		m.AvgReadLatencyMS = maxf(m.AvgReadLatencyMS*s.drift(0.15), 0)
		m.AvgWriteLatencyMS = maxf(m.AvgWriteLatencyMS*s.drift(0.15), 0)
		m.ColdStartLatencyMS = maxf(m.ColdStartLatencyMS*s.drift(0.10), 0)
		m.ReadThroughputMbps = maxf(m.ReadThroughputMbps*s.drift(0.15), 0)
		m.WriteThroughputMbps = maxf(m.WriteThroughputMbps*s.drift(0.15), 0)

		m.AvailabilityPct = clampf(m.AvailabilityPct+s.jitter(0.2), 0, 100)
		m.ErrorRatePct = clampf(m.ErrorRatePct+s.jitter(0.1), 0, 100)

		next[name] = m
	}
	return next, nil
}

// drift returns a multiplicative factor in [1-spread, 1+spread].
func (s *SyntheticSource) drift(spread float64) float64 {
	return 1.0 + (s.rng.Float64()*2-1)*spread
}

// jitter returns an additive delta in [-spread, +spread].
func (s *SyntheticSource) jitter(spread float64) float64 {
	return (s.rng.Float64()*2 - 1) * spread
}

// TelemetrySource pulls the performance document from an external telemetry
// endpoint. The endpoint returns a JSON object mapping backend names to
// PerformanceMetrics; figures for backends missing from the response carry
// over from the current document.
//
// A circuit breaker shields the refresher loop from a flapping feed and a
// rate limiter bounds how often the feed is polled regardless of refresh
// scheduling.
type TelemetrySource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[map[string]PerformanceMetrics]
	limiter *rate.Limiter
}

// NewTelemetrySource creates a telemetry-backed source polling the given
// URL.
func NewTelemetrySource(url string) *TelemetrySource {
	breaker := gobreaker.NewCircuitBreaker[map[string]PerformanceMetrics](gobreaker.Settings{
		Name:        "telemetry-feed",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &TelemetrySource{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
		// One poll per 10s sustained, short bursts allowed.
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 2),
	}
}

// Refresh polls the telemetry endpoint and merges its figures over the
// current document for the available backends.
func (t *TelemetrySource) Refresh(ctx context.Context, current map[string]PerformanceMetrics, available []string) (map[string]PerformanceMetrics, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("telemetry poll rate limit: %w", err)
	}

	fetched, err := t.breaker.Execute(func() (map[string]PerformanceMetrics, error) {
		return t.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry fetch: %w", err)
	}

	next := make(map[string]PerformanceMetrics, len(current))
	for name, m := range current {
		next[name] = m
	}
	for _, name := range available {
		if m, ok := fetched[name]; ok {
			m.AvailabilityPct = clampf(m.AvailabilityPct, 0, 100)
			m.ErrorRatePct = clampf(m.ErrorRatePct, 0, 100)
			m.AvgReadLatencyMS = maxf(m.AvgReadLatencyMS, 0)
			m.AvgWriteLatencyMS = maxf(m.AvgWriteLatencyMS, 0)
			m.ColdStartLatencyMS = maxf(m.ColdStartLatencyMS, 0)
			m.ReadThroughputMbps = maxf(m.ReadThroughputMbps, 0)
			m.WriteThroughputMbps = maxf(m.WriteThroughputMbps, 0)
			m.CostPerGBUSD = maxf(m.CostPerGBUSD, 0)
			next[name] = m
		}
	}
	return next, nil
}

func (t *TelemetrySource) fetch(ctx context.Context) (map[string]PerformanceMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telemetry endpoint returned %d", resp.StatusCode)
	}

	var m map[string]PerformanceMetrics
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode telemetry response: %w", err)
	}
	return m, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
