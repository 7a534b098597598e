// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"sort"
	"sync"
)

// StatisticsCollector keeps running usage counters for the engine. Updated
// exactly once per newly computed decision; cache hits do not touch it.
// Safe for concurrent use.
type StatisticsCollector struct {
	mu             sync.Mutex
	totalDecisions int64
	byBackend      map[string]int64
	byPolicy       map[string]int64
	byCategory     map[string]int64
	avgDecisionMS  float64
}

// NewStatisticsCollector creates an empty collector.
func NewStatisticsCollector() *StatisticsCollector {
	return &StatisticsCollector{
		byBackend:  make(map[string]int64),
		byPolicy:   make(map[string]int64),
		byCategory: make(map[string]int64),
	}
}

// Record accounts for one newly computed decision. The decision latency
// folds into an incremental mean.
func (s *StatisticsCollector) Record(d *RoutingDecision, category ContentCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalDecisions++
	s.byBackend[d.PrimaryBackend]++
	s.byPolicy[d.AppliedPolicy]++
	s.byCategory[string(category)]++
	s.avgDecisionMS += (d.DecisionTimeMS - s.avgDecisionMS) / float64(s.totalDecisions)
}

// NameCount is one entry of a usage ranking.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatisticsSnapshot is a point-in-time copy of the counters.
type StatisticsSnapshot struct {
	TotalDecisions int64            `json:"total_decisions"`
	ByBackend      map[string]int64 `json:"by_backend"`
	ByPolicy       map[string]int64 `json:"by_policy"`
	ByCategory     map[string]int64 `json:"by_category"`
	AvgDecisionMS  float64          `json:"avg_decision_ms"`
}

// Snapshot returns a copy of the current counters.
func (s *StatisticsCollector) Snapshot() StatisticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatisticsSnapshot{
		TotalDecisions: s.totalDecisions,
		ByBackend:      copyCounts(s.byBackend),
		ByPolicy:       copyCounts(s.byPolicy),
		ByCategory:     copyCounts(s.byCategory),
		AvgDecisionMS:  s.avgDecisionMS,
	}
}

// TopN returns the n highest counts, descending, names breaking ties
// ascending for deterministic output.
func TopN(counts map[string]int64, n int) []NameCount {
	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
