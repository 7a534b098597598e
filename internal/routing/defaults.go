// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

// Built-in defaults for the four persisted documents. Each bootstraps the
// corresponding JSON file on first run and is the in-memory fallback when
// no file exists.

func floatPtr(v float64) *float64 { return &v }

// defaultGlobalConfig returns the default global routing configuration.
func defaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Enabled:             true,
		DefaultPolicy:       "balanced",
		MinimumBackendScore: 0.3,
		CostWeight:          0.33,
		PerformanceWeight:   0.33,
		ReliabilityWeight:   0.34,
	}
}

// defaultPolicies returns the built-in policy table.
func defaultPolicies() map[string]*RoutingPolicy {
	return map[string]*RoutingPolicy{
		"balanced": {
			Name:              "balanced",
			Description:       "Even weighting across cost, performance, and reliability",
			CostWeight:        0.33,
			PerformanceWeight: 0.33,
			ReliabilityWeight: 0.34,
			MaxReplicas:       2,
			GeoPreferences:    GeoPreferences{SameRegion: 1.2, SameContinent: 1.0, DifferentContinent: 0.8},
		},
		"cost-effective": {
			Name:              "cost-effective",
			Description:       "Minimize storage cost; tolerate slower backends",
			CostWeight:        0.7,
			PerformanceWeight: 0.15,
			ReliabilityWeight: 0.15,
			MaxReplicas:       2,
			BackendPreferences: map[string]float64{
				"filecoin": 1.3,
				"ipfs":     1.1,
				"s3":       0.8,
			},
			GeoPreferences: GeoPreferences{SameRegion: 1.1, SameContinent: 1.0, DifferentContinent: 0.9},
		},
		"performance": {
			Name:              "performance",
			Description:       "Favor low latency and high throughput",
			CostWeight:        0.1,
			PerformanceWeight: 0.7,
			ReliabilityWeight: 0.2,
			MaxReplicas:       1,
			BackendPreferences: map[string]float64{
				"local": 1.3,
				"s3":    1.2,
			},
			GeoPreferences: GeoPreferences{SameRegion: 1.5, SameContinent: 1.1, DifferentContinent: 0.7},
		},
		"reliability": {
			Name:              "reliability",
			Description:       "Favor proven availability and low error rates",
			CostWeight:        0.15,
			PerformanceWeight: 0.25,
			ReliabilityWeight: 0.6,
			MaxReplicas:       3,
			BackendPreferences: map[string]float64{
				"s3":       1.2,
				"filecoin": 1.1,
			},
			GeoPreferences: GeoPreferences{SameRegion: 1.2, SameContinent: 1.0, DifferentContinent: 0.9},
		},
		"archive": {
			Name:              "archive",
			Description:       "Cold storage for large, infrequently accessed content",
			CostWeight:        0.8,
			PerformanceWeight: 0.05,
			ReliabilityWeight: 0.15,
			MaxReplicas:       3,
			ContentFilters: &ContentFilters{
				MinSizeMB: floatPtr(100),
			},
			BackendPreferences: map[string]float64{
				"filecoin": 1.5,
				"storacha": 1.2,
			},
			GeoPreferences: GeoPreferences{SameRegion: 1.0, SameContinent: 1.0, DifferentContinent: 1.0},
		},
		"ml-workloads": {
			Name:              "ml-workloads",
			Description:       "Model weights and datasets for training and inference",
			CostWeight:        0.2,
			PerformanceWeight: 0.5,
			ReliabilityWeight: 0.3,
			MaxReplicas:       2,
			ContentFilters: &ContentFilters{
				ContentTypes: []string{"model", "dataset", "parquet", "safetensors"},
			},
			BackendPreferences: map[string]float64{
				"huggingface": 1.4,
				"ipfs":        1.1,
			},
			GeoPreferences: GeoPreferences{SameRegion: 1.2, SameContinent: 1.0, DifferentContinent: 0.9},
		},
	}
}

// defaultGeoTopology returns the default region topology. Region order
// matters: CIDR resolution is first-match.
func defaultGeoTopology() *GeoTopology {
	return &GeoTopology{
		Regions: []GeoRegion{
			{
				ID:        "us-east",
				Name:      "US East",
				Continent: "north-america",
				LatencyMS: map[string]float64{
					"us-east":      0,
					"us-west":      65,
					"eu-west":      85,
					"ap-northeast": 170,
				},
				IPRanges:          []string{"3.0.0.0/9", "52.0.0.0/10", "100.24.0.0/13"},
				AvailableBackends: []string{"ipfs", "s3", "filecoin", "storacha", "local"},
			},
			{
				ID:        "us-west",
				Name:      "US West",
				Continent: "north-america",
				LatencyMS: map[string]float64{
					"us-east":      65,
					"us-west":      0,
					"eu-west":      140,
					"ap-northeast": 110,
				},
				IPRanges:          []string{"13.52.0.0/14", "54.176.0.0/12"},
				AvailableBackends: []string{"ipfs", "s3", "huggingface", "local"},
			},
			{
				ID:        "eu-west",
				Name:      "EU West",
				Continent: "europe",
				LatencyMS: map[string]float64{
					"us-east":      85,
					"us-west":      140,
					"eu-west":      0,
					"ap-northeast": 210,
				},
				IPRanges:          []string{"18.200.0.0/13", "34.240.0.0/13"},
				AvailableBackends: []string{"ipfs", "s3", "filecoin", "huggingface"},
			},
			{
				ID:        "ap-northeast",
				Name:      "Asia Pacific Northeast",
				Continent: "asia",
				LatencyMS: map[string]float64{
					"us-east":      170,
					"us-west":      110,
					"eu-west":      210,
					"ap-northeast": 0,
				},
				IPRanges:          []string{"13.112.0.0/14", "52.192.0.0/13"},
				AvailableBackends: []string{"ipfs", "s3", "lassie"},
			},
		},
		PreferredRegions: []string{"us-east", "eu-west"},
		RegionalAdjustments: map[string]map[string]RegionalAdjustment{
			"ap-northeast": {
				"filecoin": {LatencyFactor: 1.4, AvailabilityFactor: 0.995, CostFactor: 1.1},
				"storacha": {LatencyFactor: 1.3, AvailabilityFactor: 0.998, CostFactor: 1.05},
			},
			"eu-west": {
				"huggingface": {LatencyFactor: 0.9, AvailabilityFactor: 1.0, CostFactor: 1.0},
			},
		},
	}
}

// defaultPerformanceMetrics returns the bootstrap performance document.
// Figures are representative, not measured; the refresher perturbs or
// replaces them at runtime.
func defaultPerformanceMetrics() map[string]PerformanceMetrics {
	return map[string]PerformanceMetrics{
		"ipfs": {
			AvgReadLatencyMS: 120, AvgWriteLatencyMS: 180,
			ReadThroughputMbps: 60, WriteThroughputMbps: 40,
			AvailabilityPct: 99.0, ErrorRatePct: 1.0,
			CostPerGBUSD: 0.008, ColdStartLatencyMS: 800,
		},
		"s3": {
			AvgReadLatencyMS: 45, AvgWriteLatencyMS: 60,
			ReadThroughputMbps: 95, WriteThroughputMbps: 85,
			AvailabilityPct: 99.95, ErrorRatePct: 0.1,
			CostPerGBUSD: 0.023, ColdStartLatencyMS: 50,
		},
		"filecoin": {
			AvgReadLatencyMS: 3000, AvgWriteLatencyMS: 3500,
			ReadThroughputMbps: 20, WriteThroughputMbps: 15,
			AvailabilityPct: 98.5, ErrorRatePct: 2.0,
			CostPerGBUSD: 0.002, ColdStartLatencyMS: 5000,
		},
		"storacha": {
			AvgReadLatencyMS: 250, AvgWriteLatencyMS: 300,
			ReadThroughputMbps: 45, WriteThroughputMbps: 35,
			AvailabilityPct: 99.2, ErrorRatePct: 0.8,
			CostPerGBUSD: 0.006, ColdStartLatencyMS: 900,
		},
		"huggingface": {
			AvgReadLatencyMS: 180, AvgWriteLatencyMS: 400,
			ReadThroughputMbps: 70, WriteThroughputMbps: 30,
			AvailabilityPct: 99.5, ErrorRatePct: 0.5,
			CostPerGBUSD: 0.01, ColdStartLatencyMS: 600,
		},
		"lassie": {
			AvgReadLatencyMS: 400, AvgWriteLatencyMS: 4000,
			ReadThroughputMbps: 55, WriteThroughputMbps: 5,
			AvailabilityPct: 98.0, ErrorRatePct: 1.5,
			CostPerGBUSD: 0.0, ColdStartLatencyMS: 1200,
		},
		"local": {
			AvgReadLatencyMS: 5, AvgWriteLatencyMS: 8,
			ReadThroughputMbps: 200, WriteThroughputMbps: 180,
			AvailabilityPct: 99.9, ErrorRatePct: 0.2,
			CostPerGBUSD: 0.0005, ColdStartLatencyMS: 10,
		},
	}
}

// defaultBackends is the bootstrap backend set used until the environment
// injects real availability via Service.SetBackends.
func defaultBackends() map[string]BackendState {
	return map[string]BackendState{
		"ipfs":        {Available: true, Simulation: true},
		"s3":          {Available: true, Simulation: true},
		"filecoin":    {Available: true, Simulation: true},
		"storacha":    {Available: true, Simulation: true},
		"huggingface": {Available: true, Simulation: true},
		"lassie":      {Available: true, Simulation: true},
		"local":       {Available: true, Simulation: true},
	}
}

// unknownBackendMetrics is assumed for backends with no entry in the
// performance document.
var unknownBackendMetrics = PerformanceMetrics{
	AvgReadLatencyMS: 500, AvgWriteLatencyMS: 750,
	ReadThroughputMbps: 25, WriteThroughputMbps: 20,
	AvailabilityPct: 95.0, ErrorRatePct: 2.5,
	CostPerGBUSD: 0.02, ColdStartLatencyMS: 1000,
}

// defaultContentAffinityFactor is used when the affinity table has no entry
// for a backend/category pair.
const defaultContentAffinityFactor = 0.7

// contentAffinity scores backend suitability per content category.
var contentAffinity = map[string]map[ContentCategory]float64{
	"ipfs": {
		CategoryImage: 0.9, CategoryVideo: 0.9, CategoryAudio: 0.9,
		CategoryText: 0.85, CategoryDocument: 0.85,
		CategoryModel: 0.8, CategoryDataset: 0.85, CategoryApplication: 0.8,
	},
	"s3": {
		CategoryImage: 0.9, CategoryVideo: 0.9, CategoryAudio: 0.85,
		CategoryText: 0.9, CategoryDocument: 0.9,
		CategoryModel: 0.75, CategoryDataset: 0.8, CategoryApplication: 0.85,
	},
	"filecoin": {
		CategoryImage: 0.8, CategoryVideo: 0.85, CategoryAudio: 0.8,
		CategoryText: 0.7, CategoryDocument: 0.75,
		CategoryModel: 0.7, CategoryDataset: 0.8, CategoryApplication: 0.7,
	},
	"storacha": {
		CategoryImage: 0.85, CategoryVideo: 0.85, CategoryAudio: 0.8,
		CategoryText: 0.8, CategoryDocument: 0.8,
		CategoryModel: 0.7, CategoryDataset: 0.75, CategoryApplication: 0.75,
	},
	"huggingface": {
		CategoryImage: 0.7, CategoryVideo: 0.6, CategoryAudio: 0.7,
		CategoryText: 0.8, CategoryDocument: 0.7,
		CategoryModel: 1.0, CategoryDataset: 0.95, CategoryApplication: 0.6,
	},
	"lassie": {
		CategoryImage: 0.8, CategoryVideo: 0.8, CategoryAudio: 0.8,
		CategoryText: 0.75, CategoryDocument: 0.75,
		CategoryModel: 0.6, CategoryDataset: 0.7, CategoryApplication: 0.7,
	},
	"local": {
		CategoryImage: 0.8, CategoryVideo: 0.8, CategoryAudio: 0.8,
		CategoryText: 0.85, CategoryDocument: 0.85,
		CategoryModel: 0.7, CategoryDataset: 0.75, CategoryApplication: 0.9,
	},
}

// contentAffinityFactor looks up the suitability factor for a backend and
// category.
func contentAffinityFactor(backend string, category ContentCategory) float64 {
	if byCategory, ok := contentAffinity[backend]; ok {
		if f, ok := byCategory[category]; ok {
			return f
		}
	}
	return defaultContentAffinityFactor
}
