// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import "time"

// Operation is the kind of storage operation being routed.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// ContentCategory is a coarse classification of a MIME type used to bias
// backend scoring.
type ContentCategory string

const (
	CategoryImage       ContentCategory = "image"
	CategoryVideo       ContentCategory = "video"
	CategoryAudio       ContentCategory = "audio"
	CategoryText        ContentCategory = "text"
	CategoryDocument    ContentCategory = "document"
	CategoryModel       ContentCategory = "model"
	CategoryDataset     ContentCategory = "dataset"
	CategoryApplication ContentCategory = "application"
	CategoryUnknown     ContentCategory = "unknown"
)

// BackendState describes one storage backend as reported by the
// environment. The engine reads availability and never mutates it.
type BackendState struct {
	Available  bool `json:"available"`
	Simulation bool `json:"simulation"`
}

// PerformanceMetrics holds per-backend performance figures. Mutated only by
// the metrics refresher; read by the scoring engine.
type PerformanceMetrics struct {
	AvgReadLatencyMS    float64 `json:"avg_read_latency_ms"`
	AvgWriteLatencyMS   float64 `json:"avg_write_latency_ms"`
	ReadThroughputMbps  float64 `json:"read_throughput_mbps"`
	WriteThroughputMbps float64 `json:"write_throughput_mbps"`
	AvailabilityPct     float64 `json:"availability_pct"`
	ErrorRatePct        float64 `json:"error_rate_pct"`
	CostPerGBUSD        float64 `json:"cost_per_gb_usd"`
	ColdStartLatencyMS  float64 `json:"cold_start_latency_ms"`
}

// RegionalAdjustment holds multiplicative factors applied to a backend's
// metrics when serving a given client region.
type RegionalAdjustment struct {
	LatencyFactor      float64 `json:"latency_factor"`
	AvailabilityFactor float64 `json:"availability_factor"`
	CostFactor         float64 `json:"cost_factor"`
}

// GeoRegion is a named geographic zone.
//
// LatencyMS maps peer region IDs to expected inter-region latency;
// LatencyMS[self] is 0 and unknown pairs default to
// DefaultInterRegionLatencyMS.
type GeoRegion struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Continent         string             `json:"continent"`
	LatencyMS         map[string]float64 `json:"latency_ms"`
	IPRanges          []string           `json:"ip_ranges"`
	AvailableBackends []string           `json:"available_backends"`
}

// DefaultInterRegionLatencyMS is assumed for region pairs missing from the
// latency matrix.
const DefaultInterRegionLatencyMS = 200.0

// GeoTopology is the persisted geographic configuration document. Region
// order is significant: CIDR resolution takes the first containing match.
type GeoTopology struct {
	Regions             []GeoRegion                              `json:"regions"`
	PreferredRegions    []string                                 `json:"preferred_regions"`
	RegionalAdjustments map[string]map[string]RegionalAdjustment `json:"regional_adjustments,omitempty"`
}

// Region returns the region with the given ID, or nil.
func (t *GeoTopology) Region(id string) *GeoRegion {
	for i := range t.Regions {
		if t.Regions[i].ID == id {
			return &t.Regions[i]
		}
	}
	return nil
}

// Continent returns the continent of a region ID, or empty string.
func (t *GeoTopology) Continent(regionID string) string {
	if r := t.Region(regionID); r != nil {
		return r.Continent
	}
	return ""
}

// ContentFilters restricts which requests a policy applies to. A nil filter
// set matches everything.
type ContentFilters struct {
	MinSizeMB *float64 `json:"min_size_mb,omitempty"`
	MaxSizeMB *float64 `json:"max_size_mb,omitempty"`

	// ContentTypes entries are matched as substrings of the request's
	// MIME type, so "model" matches "model/pytorch".
	ContentTypes []string `json:"content_types,omitempty"`
}

// GeoPreferences are the multiplicative geographic affinity factors of a
// policy.
type GeoPreferences struct {
	SameRegion         float64 `json:"same_region"`
	SameContinent      float64 `json:"same_continent"`
	DifferentContinent float64 `json:"different_continent"`
}

// RoutingPolicy is a named weighting and preference configuration. The
// three weights must sum to 1.0 within WeightSumTolerance; this is enforced
// when a policy is stored, not re-checked per decision.
type RoutingPolicy struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	CostWeight        float64 `json:"cost_weight" validate:"gte=0,lte=1"`
	PerformanceWeight float64 `json:"performance_weight" validate:"gte=0,lte=1"`
	ReliabilityWeight float64 `json:"reliability_weight" validate:"gte=0,lte=1"`

	MaxReplicas int `json:"max_replicas" validate:"gte=0"`

	ContentFilters     *ContentFilters    `json:"content_filters,omitempty"`
	BackendPreferences map[string]float64 `json:"backend_preferences,omitempty"`
	GeoPreferences     GeoPreferences     `json:"geo_preferences"`
}

// WeightSumTolerance is the allowed deviation of a policy's weight sum
// from 1.0.
const WeightSumTolerance = 0.01

// ContentAttributes describes the content of a request. Purely descriptive;
// never mutated by the engine.
type ContentAttributes struct {
	ContentType    string `json:"content_type,omitempty"`
	SizeBytes      int64  `json:"size_bytes,omitempty"`
	Priority       string `json:"priority,omitempty"`
	ReadIntensive  bool   `json:"read_intensive,omitempty"`
	WriteIntensive bool   `json:"write_intensive,omitempty"`
}

// RoutingRequest is one routing question. Immutable once constructed.
type RoutingRequest struct {
	Operation         Operation          `json:"operation"`
	ContentAttributes *ContentAttributes `json:"content_attributes,omitempty"`
	PolicyName        string             `json:"policy_name,omitempty"`
	ClientRegion      string             `json:"client_region,omitempty"`
	ClientIP          string             `json:"client_ip,omitempty"`
	ReplicationFactor int                `json:"replication_factor,omitempty"`
	RequiredBackends  []string           `json:"required_backends,omitempty"`
	ExcludedBackends  []string           `json:"excluded_backends,omitempty"`
}

// BackendScore is the full scoring breakdown for one candidate backend.
// Produced fresh per decision and never persisted.
type BackendScore struct {
	Backend          string             `json:"backend"`
	Score            float64            `json:"score"`
	CostScore        float64            `json:"cost_score"`
	PerformanceScore float64            `json:"performance_score"`
	ReliabilityScore float64            `json:"reliability_score"`
	Region           string             `json:"region,omitempty"`
	Metrics          PerformanceMetrics `json:"metrics"`
}

// RoutingDecision is the outcome of one routing evaluation.
type RoutingDecision struct {
	PrimaryBackend string         `json:"primary_backend"`
	Replicas       []string       `json:"replicas"`
	BackendScores  []BackendScore `json:"backend_scores"`
	AppliedPolicy  string         `json:"applied_policy"`
	DecisionTimeMS float64        `json:"decision_time_ms"`
	ClientRegion   string         `json:"client_region,omitempty"`
	ContentType    string         `json:"content_type,omitempty"`
	Operation      Operation      `json:"operation"`
	DecisionID     string         `json:"decision_id"`
	Timestamp      time.Time      `json:"timestamp"`
}

// GlobalConfig is the persisted global routing configuration document.
//
// The weight fields are defaults used for ad-hoc scoring (content-type
// analysis) when no policy applies; each must individually be in [0,1].
type GlobalConfig struct {
	Enabled             bool    `json:"enabled"`
	DefaultPolicy       string  `json:"default_policy" validate:"required"`
	MinimumBackendScore float64 `json:"minimum_backend_score" validate:"gte=0,lte=1"`
	CostWeight          float64 `json:"cost_weight" validate:"gte=0,lte=1"`
	PerformanceWeight   float64 `json:"performance_weight" validate:"gte=0,lte=1"`
	ReliabilityWeight   float64 `json:"reliability_weight" validate:"gte=0,lte=1"`
}
