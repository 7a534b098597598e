// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := New(Options{
		DataDir: t.TempDir(),
		Logger:  zerolog.Nop(),
	})
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDecideCostEffectiveWrite(t *testing.T) {
	s := newTestService(t)
	s.SetBackends(map[string]BackendState{
		"ipfs":     {Available: true},
		"s3":       {Available: true},
		"filecoin": {Available: true},
		"local":    {Available: true},
	})

	d := s.Decide(&RoutingRequest{
		Operation:         OperationWrite,
		PolicyName:        "cost-effective",
		ContentAttributes: &ContentAttributes{ContentType: "video/mp4", SizeBytes: 500 << 20},
		ReplicationFactor: 2,
	})

	if d.PrimaryBackend != "filecoin" {
		t.Errorf("expected filecoin under cost-effective writes, got %q", d.PrimaryBackend)
	}
	if d.AppliedPolicy != "cost-effective" {
		t.Errorf("expected cost-effective policy, got %q", d.AppliedPolicy)
	}
	if len(d.Replicas) != 2 {
		t.Errorf("expected 2 replicas, got %v", d.Replicas)
	}
	for _, r := range d.Replicas {
		if r == d.PrimaryBackend {
			t.Errorf("primary %q repeated in replicas %v", d.PrimaryBackend, d.Replicas)
		}
	}
	if len(d.BackendScores) != 4 {
		t.Errorf("expected 4 scored candidates, got %d", len(d.BackendScores))
	}
}

func TestDecideRequiredBackendOverridesThreshold(t *testing.T) {
	s := newTestService(t)

	cfg := s.Config()
	cfg.MinimumBackendScore = 0.9
	if err := s.UpdateConfig(&cfg); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}

	// No content attributes: with a threshold this high nothing qualifies
	// on its own, so the required backend becomes the only qualified one.
	d := s.Decide(&RoutingRequest{
		Operation:        OperationRead,
		RequiredBackends: []string{"storacha"},
	})

	if d.PrimaryBackend != "storacha" {
		t.Errorf("expected required storacha to become primary, got %q", d.PrimaryBackend)
	}
}

func TestDecideModelContentPrefersHuggingface(t *testing.T) {
	s := newTestService(t)

	// Flatten the performance figures so content affinity alone separates
	// the candidates.
	flat := make(map[string]PerformanceMetrics)
	for name := range defaultPerformanceMetrics() {
		flat[name] = PerformanceMetrics{
			AvgReadLatencyMS: 100, AvgWriteLatencyMS: 150,
			ReadThroughputMbps: 80, WriteThroughputMbps: 60,
			AvailabilityPct: 99.5, ErrorRatePct: 0.5,
			CostPerGBUSD: 0.01, ColdStartLatencyMS: 100,
		}
	}
	if err := s.ApplyPerformanceMetrics(flat); err != nil {
		t.Fatalf("ApplyPerformanceMetrics: %v", err)
	}

	d := s.Decide(&RoutingRequest{
		Operation:         OperationRead,
		ClientRegion:      "us-west",
		ContentAttributes: &ContentAttributes{ContentType: "model/pytorch"},
	})

	if d.PrimaryBackend != "huggingface" {
		t.Errorf("expected huggingface for model content, got %q", d.PrimaryBackend)
	}
}

func TestDecideNeverNil(t *testing.T) {
	s := newTestService(t)

	cases := []*RoutingRequest{
		nil,
		{},
		{Operation: "defragment"},
		{PolicyName: "no-such-policy"},
		{ClientIP: "not-an-ip"},
		{ExcludedBackends: []string{"ipfs", "s3", "filecoin", "storacha", "huggingface", "lassie", "local"}},
	}
	for i, req := range cases {
		d := s.Decide(req)
		if d == nil {
			t.Fatalf("case %d: Decide returned nil", i)
		}
		if d.PrimaryBackend == "" {
			t.Errorf("case %d: empty primary backend", i)
		}
		if d.Operation != OperationRead && d.Operation != OperationWrite {
			t.Errorf("case %d: unnormalized operation %q", i, d.Operation)
		}
		if d.DecisionID == "" {
			t.Errorf("case %d: missing decision id", i)
		}
	}
}

func TestDecideAllExcludedFallsBackToDefault(t *testing.T) {
	s := newTestService(t)

	d := s.Decide(&RoutingRequest{
		ExcludedBackends: []string{"ipfs", "s3", "filecoin", "storacha", "huggingface", "lassie", "local"},
	})
	if d.PrimaryBackend != "ipfs" {
		t.Errorf("expected default backend ipfs, got %q", d.PrimaryBackend)
	}
	if len(d.BackendScores) != 0 {
		t.Errorf("expected no scored candidates, got %d", len(d.BackendScores))
	}
}

func TestDecideDefaultBackendWithoutIPFS(t *testing.T) {
	s := newTestService(t)
	s.SetBackends(map[string]BackendState{
		"local": {Available: true},
	})

	d := s.Decide(&RoutingRequest{
		ExcludedBackends: []string{"local"},
	})
	if d.PrimaryBackend != "local" {
		t.Errorf("expected local fallback when ipfs is unavailable, got %q", d.PrimaryBackend)
	}
}

func TestDecideCacheIdempotence(t *testing.T) {
	s := newTestService(t)

	req := func() *RoutingRequest {
		return &RoutingRequest{
			Operation:         OperationRead,
			ContentAttributes: &ContentAttributes{ContentType: "image/png", SizeBytes: 1024},
			ClientRegion:      "eu-west",
		}
	}

	first := s.Decide(req())
	statsAfterFirst := s.Statistics().TotalDecisions

	second := s.Decide(req())
	if second.DecisionID != first.DecisionID {
		t.Error("identical requests within the TTL should return the same decision")
	}
	if got := s.Statistics().TotalDecisions; got != statsAfterFirst {
		t.Errorf("cache hit must not touch statistics: %d -> %d", statsAfterFirst, got)
	}

	s.ClearCache()
	third := s.Decide(req())
	if third.DecisionID == first.DecisionID {
		t.Error("expected a fresh decision after the cache was cleared")
	}
	if got := s.Statistics().TotalDecisions; got != statsAfterFirst+1 {
		t.Errorf("fresh decision should count: got %d", got)
	}
}

func TestDecideRegionFromClientIP(t *testing.T) {
	s := newTestService(t)

	d := s.Decide(&RoutingRequest{ClientIP: "3.1.2.3"})
	if d.ClientRegion != "us-east" {
		t.Errorf("expected us-east from 3.1.2.3, got %q", d.ClientRegion)
	}

	d = s.Decide(&RoutingRequest{ClientIP: "18.200.14.7"})
	if d.ClientRegion != "eu-west" {
		t.Errorf("expected eu-west from 18.200.14.7, got %q", d.ClientRegion)
	}
}

func TestDecideExplicitRegionWins(t *testing.T) {
	s := newTestService(t)

	d := s.Decide(&RoutingRequest{ClientRegion: "ap-northeast", ClientIP: "3.1.2.3"})
	if d.ClientRegion != "ap-northeast" {
		t.Errorf("explicit region must win over client IP, got %q", d.ClientRegion)
	}
}

func TestDecideEngineDisabled(t *testing.T) {
	s := newTestService(t)

	cfg := s.Config()
	cfg.Enabled = false
	if err := s.UpdateConfig(&cfg); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	s.ClearCache()

	d := s.Decide(&RoutingRequest{Operation: OperationWrite})
	if d.AppliedPolicy != "disabled" {
		t.Errorf("expected disabled marker policy, got %q", d.AppliedPolicy)
	}
	if d.PrimaryBackend != "ipfs" {
		t.Errorf("expected the default backend, got %q", d.PrimaryBackend)
	}
	if len(d.BackendScores) != 0 {
		t.Error("disabled engine must not score backends")
	}
}

func TestDecideUnknownPolicySilentFallback(t *testing.T) {
	s := newTestService(t)

	d := s.Decide(&RoutingRequest{PolicyName: "does-not-exist"})
	if d.AppliedPolicy != "balanced" {
		t.Errorf("expected silent fallback to the default policy, got %q", d.AppliedPolicy)
	}
}

func TestDecideFilterMismatchSilentFallback(t *testing.T) {
	s := newTestService(t)

	// archive requires at least 100 MB; a 1 MB request falls back silently.
	d := s.Decide(&RoutingRequest{
		PolicyName:        "archive",
		ContentAttributes: &ContentAttributes{ContentType: "application/pdf", SizeBytes: 1 << 20},
	})
	if d.AppliedPolicy != "balanced" {
		t.Errorf("expected fallback to balanced, got %q", d.AppliedPolicy)
	}
}

func TestUpdateConfigValidation(t *testing.T) {
	s := newTestService(t)

	cfg := s.Config()
	cfg.DefaultPolicy = "ghost"
	if err := s.UpdateConfig(&cfg); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("expected ErrPolicyNotFound for unknown default policy, got %v", err)
	}

	cfg = s.Config()
	cfg.MinimumBackendScore = 1.5
	if err := s.UpdateConfig(&cfg); err == nil {
		t.Error("expected a validation error for an out-of-range threshold")
	}
}

func TestUpsertPolicyRejectsBadWeights(t *testing.T) {
	s := newTestService(t)

	err := s.UpsertPolicy(&RoutingPolicy{
		Name:              "lopsided",
		CostWeight:        0.9,
		PerformanceWeight: 0.9,
		ReliabilityWeight: 0.9,
	})
	if err == nil {
		t.Fatal("expected rejection of weights summing to 2.7")
	}
	if _, err := s.Policy("lopsided"); !errors.Is(err, ErrPolicyNotFound) {
		t.Error("rejected policy must not be stored")
	}
}

func TestUpsertPolicyPersists(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{DataDir: dir, Logger: zerolog.Nop()})
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := &RoutingPolicy{
		Name:              "media",
		Description:       "Video and image hosting",
		CostWeight:        0.2,
		PerformanceWeight: 0.6,
		ReliabilityWeight: 0.2,
		MaxReplicas:       1,
		GeoPreferences:    GeoPreferences{SameRegion: 1.2, SameContinent: 1.0, DifferentContinent: 0.8},
	}
	if err := s.UpsertPolicy(p); err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}
	_ = s.Close()

	// A fresh service over the same data directory sees the stored policy.
	s2 := New(Options{DataDir: dir, Logger: zerolog.Nop()})
	if err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer s2.Close()

	got, err := s2.Policy("media")
	if err != nil {
		t.Fatalf("Policy after reload: %v", err)
	}
	if got.PerformanceWeight != 0.6 {
		t.Errorf("persisted policy lost weights: %+v", got)
	}
}

func TestDeletePolicyGuards(t *testing.T) {
	s := newTestService(t)

	if err := s.DeletePolicy("balanced"); !errors.Is(err, ErrDefaultPolicyDelete) {
		t.Errorf("expected ErrDefaultPolicyDelete, got %v", err)
	}
	if err := s.DeletePolicy("ghost"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("expected ErrPolicyNotFound, got %v", err)
	}

	if err := s.DeletePolicy("archive"); err != nil {
		t.Fatalf("DeletePolicy: %v", err)
	}
	if _, err := s.Policy("archive"); !errors.Is(err, ErrPolicyNotFound) {
		t.Error("archive should be gone")
	}
}

func TestPoliciesReturnsCopies(t *testing.T) {
	s := newTestService(t)

	s.Policies()["balanced"].CostWeight = 0.99

	fresh, err := s.Policy("balanced")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CostWeight != 0.33 {
		t.Error("mutating a returned policy must not affect the stored table")
	}
}

func TestPerformanceFor(t *testing.T) {
	s := newTestService(t)

	m, err := s.PerformanceFor("s3")
	if err != nil {
		t.Fatalf("PerformanceFor: %v", err)
	}
	if m.AvgReadLatencyMS != 45 {
		t.Errorf("unexpected s3 figures: %+v", m)
	}

	if _, err := s.PerformanceFor("ghost"); !errors.Is(err, ErrBackendNotFound) {
		t.Errorf("expected ErrBackendNotFound, got %v", err)
	}
}

func TestAnalyzeContentTypeLeavesNoTrace(t *testing.T) {
	s := newTestService(t)

	before := s.Statistics().TotalDecisions
	a := s.AnalyzeContentType("model/safetensors", 2<<30, OperationRead)

	if a.Category != CategoryModel {
		t.Errorf("expected model category, got %q", a.Category)
	}
	if a.Recommended == "" {
		t.Error("expected a recommendation")
	}
	if len(a.Alternatives) > 2 {
		t.Errorf("expected at most 2 alternatives, got %v", a.Alternatives)
	}
	for _, alt := range a.Alternatives {
		if alt == a.Recommended {
			t.Errorf("recommendation repeated in alternatives: %v", a.Alternatives)
		}
	}
	if got := s.Statistics().TotalDecisions; got != before {
		t.Error("analysis must not enter the usage statistics")
	}
}

func TestSimulate(t *testing.T) {
	s := newTestService(t)

	report := s.Simulate(200)
	if report.Requests != 200 {
		t.Errorf("expected 200 requests, got %d", report.Requests)
	}
	total := 0
	for _, c := range report.ByBackend {
		total += c
	}
	if total != 200 {
		t.Errorf("backend counts sum to %d, want 200", total)
	}
	if report.UniqueBackends < 1 {
		t.Error("expected at least one backend in the distribution")
	}
	for backend, pct := range report.BackendPct {
		if pct < 0 || pct > 100 {
			t.Errorf("%s percentage out of range: %v", backend, pct)
		}
	}
}

func TestCurrentStatus(t *testing.T) {
	s := newTestService(t)
	s.Decide(&RoutingRequest{Operation: OperationRead})

	st := s.CurrentStatus()
	if !st.Enabled {
		t.Error("expected enabled engine")
	}
	if st.DefaultPolicy != "balanced" {
		t.Errorf("unexpected default policy %q", st.DefaultPolicy)
	}
	if len(st.Policies) != 6 {
		t.Errorf("expected 6 built-in policies, got %d: %v", len(st.Policies), st.Policies)
	}
	for i := 1; i < len(st.Policies); i++ {
		if st.Policies[i-1] > st.Policies[i] {
			t.Errorf("policy names not sorted: %v", st.Policies)
		}
	}
	if st.TotalDecisions != 1 {
		t.Errorf("expected 1 decision recorded, got %d", st.TotalDecisions)
	}
	if len(st.Regions) != 4 {
		t.Errorf("expected 4 regions, got %v", st.Regions)
	}
}

func TestStartBackgroundTasksIdempotent(t *testing.T) {
	s := newTestService(t)

	if !s.StartBackgroundTasks() {
		t.Error("first start should report a new loop")
	}
	if s.StartBackgroundTasks() {
		t.Error("second start should be a no-op")
	}
	s.StopBackgroundTasks()
}
