// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/metrics"
)

// Refresher periodically refreshes the performance document through a
// MetricsSource and persists the result. It implements suture.Service; it
// can also be started ad hoc via Service.StartBackgroundTasks.
//
// A failed cycle is logged and retried at the next interval; it never
// crashes the loop. Shutdown is graceful: cancellation stops new cycles but
// an in-flight persist completes.
type Refresher struct {
	svc      *Service
	source   MetricsSource
	interval time.Duration
	logger   zerolog.Logger
	running  atomic.Bool
}

// NewRefresher creates a refresher for the given service.
func NewRefresher(svc *Service, source MetricsSource, interval time.Duration) *Refresher {
	return &Refresher{
		svc:      svc,
		source:   source,
		interval: interval,
		logger:   svc.logger.With().Str("component", "refresher").Logger(),
	}
}

// Running reports whether the refresh loop is currently active.
func (r *Refresher) Running() bool {
	return r.running.Load()
}

// Serve runs the refresh loop until ctx is canceled. Suture contract:
// returning ctx.Err() on cancellation signals a normal stop.
func (r *Refresher) Serve(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		// A second supervisor slot for the same refresher is a wiring bug;
		// park until canceled rather than double-refresh.
		<-ctx.Done()
		return ctx.Err()
	}
	defer r.running.Store(false)

	r.logger.Info().Dur("interval", r.interval).Msg("metrics refresher started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("metrics refresher stopping")
			return ctx.Err()
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle performs one refresh cycle. Errors are absorbed: logged,
// counted, and left for the next interval.
func (r *Refresher) RunCycle(ctx context.Context) {
	current, available := r.svc.metricsSnapshot()
	if len(available) == 0 {
		return
	}

	next, err := r.source.Refresh(ctx, current, available)
	if err != nil {
		metrics.RefreshCycles.WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Msg("metrics refresh cycle failed")
		return
	}

	if err := r.svc.ApplyPerformanceMetrics(next); err != nil {
		metrics.RefreshCycles.WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Msg("failed to persist refreshed metrics")
		return
	}

	metrics.RefreshCycles.WithLabelValues("ok").Inc()
	r.logger.Debug().Int("backends", len(available)).Msg("performance metrics refreshed")
}

// String names the refresher in supervisor logs.
func (r *Refresher) String() string { return "metrics-refresher" }
