// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

// Package main is the entry point for the routing server.
//
// The server answers "which storage backend should hold this content"
// over a JSON HTTP API. It scores the configured backends (ipfs, s3,
// filecoin, storacha, huggingface, lassie, local) on cost, performance,
// and reliability under a named routing policy, biased by content type
// and client geography.
//
// # Startup order
//
//  1. Configuration: koanf v2 layering defaults, config.yaml, env vars
//  2. Logging: zerolog, JSON or console format
//  3. Routing service: loads the four JSON documents from the data
//     directory, bootstrapping defaults on first run
//  4. Supervisor tree: metrics refresher (background layer) and HTTP
//     server (api layer) under suture
//
// # Configuration
//
// Layered sources, highest priority wins:
//   - Environment variables (SERVER_PORT, ENGINE_DATA_DIR, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections, in-flight requests drain within the configured
// timeout, and the refresher finishes its current cycle.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/api"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/config"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/logging"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/routing"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/supervisor"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger reports this.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("data_dir", cfg.Engine.DataDir).
		Str("metrics_source", cfg.Engine.MetricsSource).
		Msg("Starting routing server")

	svc := routing.New(routing.Options{
		DataDir:         cfg.Engine.DataDir,
		CacheTTL:        cfg.Engine.DecisionCacheTTL,
		RefreshInterval: cfg.Engine.RefreshInterval,
		Source:          metricsSource(cfg),
		Logger:          logging.Logger(),
	})
	if err := svc.Load(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load routing documents")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing routing service")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	slogLogger := slog.New(logging.NewSlogHandler())

	tree := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	if cfg.Engine.RefreshOnStart {
		tree.AddBackgroundService(svc.Refresher())
		logging.Info().
			Dur("interval", cfg.Engine.RefreshInterval).
			Msg("Metrics refresher supervised from startup")
	} else {
		logging.Info().Msg("Metrics refresher idle until POST /routing/start-background-tasks")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(svc, cfg).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

// metricsSource selects the refresher feed from configuration.
func metricsSource(cfg *config.Config) routing.MetricsSource {
	if cfg.Engine.MetricsSource == "telemetry" && cfg.Engine.TelemetryURL != "" {
		return routing.NewTelemetrySource(cfg.Engine.TelemetryURL)
	}
	return routing.NewSyntheticSource(0)
}
