// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreBootstrapsDefaults(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultPolicy != "balanced" {
		t.Errorf("expected balanced default policy, got %q", cfg.DefaultPolicy)
	}
	if _, err := os.Stat(filepath.Join(dir, "routing_config.json")); err != nil {
		t.Errorf("bootstrap should write the config document: %v", err)
	}

	policies, err := store.LoadPolicies()
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	if _, ok := policies["cost-effective"]; !ok {
		t.Error("expected built-in cost-effective policy")
	}

	topo, err := store.LoadGeoTopology()
	if err != nil {
		t.Fatalf("LoadGeoTopology: %v", err)
	}
	foundUSEast := false
	for _, region := range topo.Regions {
		if region.ID == "us-east" {
			foundUSEast = true
			break
		}
	}
	if !foundUSEast {
		t.Error("expected us-east in bootstrapped topology")
	}

	perf, err := store.LoadPerformanceMetrics()
	if err != nil {
		t.Fatalf("LoadPerformanceMetrics: %v", err)
	}
	if _, ok := perf["filecoin"]; !ok {
		t.Error("expected filecoin in bootstrapped metrics")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	cfg := defaultGlobalConfig()
	cfg.MinimumBackendScore = 0.55
	cfg.DefaultPolicy = "performance"
	if err := store.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.MinimumBackendScore != 0.55 || loaded.DefaultPolicy != "performance" {
		t.Errorf("round trip lost changes: %+v", loaded)
	}
}

func TestStorePoliciesRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	policies := defaultPolicies()
	custom := *policies["balanced"]
	custom.Name = "custom"
	custom.CostWeight, custom.PerformanceWeight, custom.ReliabilityWeight = 0.5, 0.3, 0.2
	policies["custom"] = &custom

	if err := store.SavePolicies(policies); err != nil {
		t.Fatalf("SavePolicies: %v", err)
	}
	loaded, err := store.LoadPolicies()
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	got, ok := loaded["custom"]
	if !ok {
		t.Fatal("custom policy missing after round trip")
	}
	if got.CostWeight != 0.5 {
		t.Errorf("expected cost weight 0.5, got %v", got.CostWeight)
	}
}

func TestStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "routing_config.json"), []byte("{not json"), 0o640); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(dir).LoadConfig(); err == nil {
		t.Error("expected an error for a corrupt document")
	}
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.SaveConfig(defaultGlobalConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
