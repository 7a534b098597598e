// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ipfs-kit-router/config.yaml",
	"/etc/ipfs-kit-router/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8085,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			DataDir:             "/data/routing",
			DecisionCacheTTL:    60 * time.Second,
			RefreshInterval:     300 * time.Second,
			RefreshOnStart:      true,
			MetricsSource:       "synthetic",
			TelemetryURL:        "",
			SimulateMaxRequests: 10000,
		},
		API: APIConfig{
			RateLimitPerMinute: 600,
			CORSOrigins:        nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
//
// Environment variables map to config paths by replacing the first
// underscore with a dot: SERVER_PORT -> server.port,
// ENGINE_DATA_DIR -> engine.data_dir, LOG_LEVEL -> logging.level.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated env values for slice fields
	if raw := k.String("api.cors_origins"); raw != "" && strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set("api.cors_origins", parts); err != nil {
			return nil, fmt.Errorf("failed to process api.cors_origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile locates the config file via CONFIG_PATH or the default
// search paths. Returns empty string when no file exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf paths.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	// Shorthand variables kept for operator convenience.
	switch key {
	case "log_level":
		return "logging.level"
	case "log_format":
		return "logging.format"
	case "log_caller":
		return "logging.caller"
	case "data_dir":
		return "engine.data_dir"
	case "port":
		return "server.port"
	}

	for _, prefix := range []string{"server_", "engine_", "api_", "logging_"} {
		if strings.HasPrefix(key, prefix) {
			section := strings.TrimSuffix(prefix, "_")
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	// Not a recognized configuration variable; keep it out of the tree.
	return ""
}
