// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"math"
	"sync"
	"testing"
)

func TestStatisticsRecord(t *testing.T) {
	s := NewStatisticsCollector()

	s.Record(&RoutingDecision{PrimaryBackend: "ipfs", AppliedPolicy: "balanced", DecisionTimeMS: 2.0}, CategoryImage)
	s.Record(&RoutingDecision{PrimaryBackend: "ipfs", AppliedPolicy: "balanced", DecisionTimeMS: 4.0}, CategoryVideo)
	s.Record(&RoutingDecision{PrimaryBackend: "s3", AppliedPolicy: "performance", DecisionTimeMS: 6.0}, CategoryImage)

	snap := s.Snapshot()
	if snap.TotalDecisions != 3 {
		t.Errorf("expected 3 decisions, got %d", snap.TotalDecisions)
	}
	if snap.ByBackend["ipfs"] != 2 || snap.ByBackend["s3"] != 1 {
		t.Errorf("unexpected backend counts: %v", snap.ByBackend)
	}
	if snap.ByPolicy["balanced"] != 2 {
		t.Errorf("unexpected policy counts: %v", snap.ByPolicy)
	}
	if snap.ByCategory["image"] != 2 {
		t.Errorf("unexpected category counts: %v", snap.ByCategory)
	}
	if math.Abs(snap.AvgDecisionMS-4.0) > 1e-9 {
		t.Errorf("expected incremental mean 4.0, got %.4f", snap.AvgDecisionMS)
	}
}

func TestStatisticsSnapshotIsCopy(t *testing.T) {
	s := NewStatisticsCollector()
	s.Record(&RoutingDecision{PrimaryBackend: "ipfs", AppliedPolicy: "balanced"}, CategoryText)

	snap := s.Snapshot()
	snap.ByBackend["ipfs"] = 999

	if s.Snapshot().ByBackend["ipfs"] != 1 {
		t.Error("mutating a snapshot must not affect the collector")
	}
}

func TestStatisticsConcurrentRecord(t *testing.T) {
	s := NewStatisticsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				s.Record(&RoutingDecision{PrimaryBackend: "ipfs", AppliedPolicy: "balanced", DecisionTimeMS: 1}, CategoryUnknown)
			}
		}()
	}
	wg.Wait()

	if snap := s.Snapshot(); snap.TotalDecisions != 2000 {
		t.Errorf("expected 2000 decisions, got %d", snap.TotalDecisions)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int64{"a": 5, "b": 9, "c": 5, "d": 1}

	top := TopN(counts, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].Name != "b" {
		t.Errorf("expected b first, got %s", top[0].Name)
	}
	// Equal counts tie-break by name for deterministic output.
	if top[1].Name != "a" || top[2].Name != "c" {
		t.Errorf("expected deterministic a,c order, got %s,%s", top[1].Name, top[2].Name)
	}

	if got := TopN(map[string]int64{}, 3); len(got) != 0 {
		t.Errorf("expected empty ranking, got %v", got)
	}
}
