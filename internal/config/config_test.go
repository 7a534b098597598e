// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 8085 {
		t.Errorf("expected default port 8085, got %d", cfg.Server.Port)
	}
	if cfg.Engine.DecisionCacheTTL != 60*time.Second {
		t.Errorf("expected 60s decision cache TTL, got %s", cfg.Engine.DecisionCacheTTL)
	}
	if cfg.Engine.MetricsSource != "synthetic" {
		t.Errorf("expected synthetic metrics source, got %q", cfg.Engine.MetricsSource)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENGINE_REFRESH_INTERVAL", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected env override port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env override level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Engine.RefreshInterval != 45*time.Second {
		t.Errorf("expected 45s refresh interval, got %s", cfg.Engine.RefreshInterval)
	}
}

func TestLoadCORSOriginsCommaSeparated(t *testing.T) {
	t.Setenv("API_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.API.CORSOrigins)
	}
	if cfg.API.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("expected trimmed second origin, got %q", cfg.API.CORSOrigins[1])
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty data dir", func(c *Config) { c.Engine.DataDir = "" }},
		{"zero cache ttl", func(c *Config) { c.Engine.DecisionCacheTTL = 0 }},
		{"sub-second refresh", func(c *Config) { c.Engine.RefreshInterval = 100 * time.Millisecond }},
		{"unknown metrics source", func(c *Config) { c.Engine.MetricsSource = "psychic" }},
		{"telemetry without url", func(c *Config) {
			c.Engine.MetricsSource = "telemetry"
			c.Engine.TelemetryURL = ""
		}},
		{"zero rate limit", func(c *Config) { c.API.RateLimitPerMinute = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"ENGINE_DATA_DIR", "engine.data_dir"},
		{"API_RATE_LIMIT_PER_MINUTE", "api.rate_limit_per_minute"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
