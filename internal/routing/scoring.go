// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import "sort"

// Normalization reference points for the scoring formulas. Backends at or
// beyond a reference value score 0 (cost, latency) or 1 (throughput) on
// that axis.
const (
	costReferenceUSD = 0.05

	readLatencyRefMS      = 1000.0
	readThroughputRefMbps = 100.0

	writeLatencyRefMS      = 1500.0
	writeThroughputRefMbps = 80.0

	latencyWeight    = 0.7
	throughputWeight = 0.3

	availabilityWeight = 0.7
	errorRateWeight    = 0.3
)

// Scorer computes per-backend scores against a consistent snapshot of
// metrics and topology. Build one per decision via Service; a Scorer never
// mutates its inputs and holds no locks.
type Scorer struct {
	Metrics  map[string]PerformanceMetrics
	Topology *GeoTopology
}

// Score computes the full breakdown for one backend, or (nil, false) when
// the backend is excluded or unavailable and must not be ranked.
//
// The composite is deliberately not clamped to [0,1]: preference and geo
// multipliers above 1.0 boost a backend beyond its raw weighted score, and
// downstream ranking relies on order, not magnitude.
func (sc *Scorer) Score(
	backend string,
	available bool,
	op Operation,
	category ContentCategory,
	policy *RoutingPolicy,
	clientRegion string,
	excluded map[string]bool,
) (*BackendScore, bool) {
	if excluded[backend] || !available {
		return nil, false
	}

	m := sc.metricsFor(backend, clientRegion)

	costScore := 1.0 - minf(m.CostPerGBUSD/costReferenceUSD, 1.0)

	var perfScore float64
	if op == OperationWrite {
		latencyScore := 1.0 - minf(m.AvgWriteLatencyMS/writeLatencyRefMS, 1.0)
		throughputScore := minf(m.WriteThroughputMbps/writeThroughputRefMbps, 1.0)
		perfScore = latencyScore*latencyWeight + throughputScore*throughputWeight
	} else {
		latencyScore := 1.0 - minf(m.AvgReadLatencyMS/readLatencyRefMS, 1.0)
		throughputScore := minf(m.ReadThroughputMbps/readThroughputRefMbps, 1.0)
		perfScore = latencyScore*latencyWeight + throughputScore*throughputWeight
	}

	availabilityScore := minf((m.AvailabilityPct-90.0)/10.0, 1.0)
	errorScore := 1.0 - minf(m.ErrorRatePct/5.0, 1.0)
	reliabilityScore := availabilityScore*availabilityWeight + errorScore*errorRateWeight

	backendRegion := sc.backendRegion(backend, clientRegion)

	contentFactor := contentAffinityFactor(backend, category)
	backendFactor := preferenceFactor(policy, backend)
	geoFactor := sc.geoFactor(policy, clientRegion, backendRegion)

	weighted := costScore*policy.CostWeight +
		perfScore*policy.PerformanceWeight +
		reliabilityScore*policy.ReliabilityWeight

	return &BackendScore{
		Backend:          backend,
		Score:            weighted * contentFactor * backendFactor * geoFactor,
		CostScore:        costScore,
		PerformanceScore: perfScore,
		ReliabilityScore: reliabilityScore,
		Region:           backendRegion,
		Metrics:          m,
	}, true
}

// metricsFor returns the backend's metrics with regional adjustment factors
// applied for the client region. The stored document is never mutated.
func (sc *Scorer) metricsFor(backend, clientRegion string) PerformanceMetrics {
	m, ok := sc.Metrics[backend]
	if !ok {
		m = unknownBackendMetrics
	}

	if clientRegion == "" || sc.Topology == nil {
		return m
	}
	byBackend, ok := sc.Topology.RegionalAdjustments[clientRegion]
	if !ok {
		return m
	}
	adj, ok := byBackend[backend]
	if !ok {
		return m
	}

	if adj.LatencyFactor > 0 {
		m.AvgReadLatencyMS *= adj.LatencyFactor
		m.AvgWriteLatencyMS *= adj.LatencyFactor
		m.ColdStartLatencyMS *= adj.LatencyFactor
	}
	if adj.AvailabilityFactor > 0 {
		m.AvailabilityPct = minf(m.AvailabilityPct*adj.AvailabilityFactor, 100.0)
	}
	if adj.CostFactor > 0 {
		m.CostPerGBUSD *= adj.CostFactor
	}
	return m
}

// backendRegion determines the backend's region relative to the client.
// The model does not track a true backend home region: a backend listed as
// available in the client's region is treated as co-located, anything else
// as unlocated.
func (sc *Scorer) backendRegion(backend, clientRegion string) string {
	if clientRegion == "" || sc.Topology == nil {
		return ""
	}
	region := sc.Topology.Region(clientRegion)
	if region == nil {
		return ""
	}
	for _, name := range region.AvailableBackends {
		if name == backend {
			return clientRegion
		}
	}
	return ""
}

// geoFactor applies the policy's geographic preference for the client and
// backend region pair. 1.0 unless both regions resolve.
func (sc *Scorer) geoFactor(policy *RoutingPolicy, clientRegion, backendRegion string) float64 {
	if clientRegion == "" || backendRegion == "" {
		return 1.0
	}
	if clientRegion == backendRegion {
		return nonZero(policy.GeoPreferences.SameRegion)
	}
	if sc.Topology != nil &&
		sc.Topology.Continent(clientRegion) != "" &&
		sc.Topology.Continent(clientRegion) == sc.Topology.Continent(backendRegion) {
		return nonZero(policy.GeoPreferences.SameContinent)
	}
	return nonZero(policy.GeoPreferences.DifferentContinent)
}

func preferenceFactor(policy *RoutingPolicy, backend string) float64 {
	if f, ok := policy.BackendPreferences[backend]; ok {
		return f
	}
	return 1.0
}

// RankScores sorts scores descending by composite score. The sort is
// stable: ties keep input enumeration order.
func RankScores(scores []BackendScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// nonZero treats an unset (zero) geo preference as neutral.
func nonZero(f float64) float64 {
	if f == 0 {
		return 1.0
	}
	return f
}
