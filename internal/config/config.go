// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

// Package config holds application-level configuration for the router
// service.
//
// Configuration is layered (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// This covers process-level settings only (HTTP server, logging, data
// directory, background refresh). The routing documents themselves (global
// routing config, policies, geo topology, performance metrics) are managed
// by the routing package's document store and persisted as JSON under
// Engine.DataDir.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Engine  EngineConfig  `koanf:"engine"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8085
	Port int `koanf:"port"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// EngineConfig holds routing engine process settings.
type EngineConfig struct {
	// DataDir is where the four routing JSON documents are persisted.
	DataDir string `koanf:"data_dir"`

	// DecisionCacheTTL is how long identical requests reuse a computed
	// decision. Default: 60s
	DecisionCacheTTL time.Duration `koanf:"decision_cache_ttl"`

	// RefreshInterval is the period of the performance metrics refresher.
	// Default: 300s
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RefreshOnStart starts the metrics refresher with the service instead
	// of waiting for an explicit start-background-tasks call.
	RefreshOnStart bool `koanf:"refresh_on_start"`

	// MetricsSource selects the refresher feed: synthetic or telemetry.
	MetricsSource string `koanf:"metrics_source"`

	// TelemetryURL is the endpoint polled by the telemetry source.
	TelemetryURL string `koanf:"telemetry_url"`

	// SimulateMaxRequests caps POST /routing/simulate request counts.
	SimulateMaxRequests int `koanf:"simulate_max_requests"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	// RateLimitPerMinute is the per-IP request budget for /routing routes.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// CORSOrigins lists allowed CORS origins. Empty means same-origin only.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error. Default: info
	Level string `koanf:"level"`

	// Format: json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	Caller bool `koanf:"caller"`
}

// Validate checks configuration consistency. Called by Load after all
// layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Engine.DataDir == "" {
		return fmt.Errorf("engine.data_dir must not be empty")
	}
	if c.Engine.DecisionCacheTTL <= 0 {
		return fmt.Errorf("engine.decision_cache_ttl must be positive, got %s", c.Engine.DecisionCacheTTL)
	}
	if c.Engine.RefreshInterval < time.Second {
		return fmt.Errorf("engine.refresh_interval must be at least 1s, got %s", c.Engine.RefreshInterval)
	}
	switch c.Engine.MetricsSource {
	case "synthetic", "telemetry":
	default:
		return fmt.Errorf("engine.metrics_source must be synthetic or telemetry, got %q", c.Engine.MetricsSource)
	}
	if c.Engine.MetricsSource == "telemetry" && c.Engine.TelemetryURL == "" {
		return fmt.Errorf("engine.telemetry_url is required when metrics_source is telemetry")
	}
	if c.Engine.SimulateMaxRequests < 1 {
		return fmt.Errorf("engine.simulate_max_requests must be positive, got %d", c.Engine.SimulateMaxRequests)
	}
	if c.API.RateLimitPerMinute < 1 {
		return fmt.Errorf("api.rate_limit_per_minute must be positive, got %d", c.API.RateLimitPerMinute)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
