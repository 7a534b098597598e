// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/cache"
	"github.com/endomorphosis/ipfs-kit-py-sub035/internal/metrics"
)

// ErrBackendNotFound indicates an unknown backend name.
var ErrBackendNotFound = errors.New("backend not found")

// Options configures a Service.
type Options struct {
	// DataDir is where the four routing documents are persisted.
	DataDir string

	// CacheTTL bounds decision memoization. Default: 60s
	CacheTTL time.Duration

	// RefreshInterval is the metrics refresher period. Default: 300s
	RefreshInterval time.Duration

	// Source feeds the metrics refresher. Default: synthetic drift.
	Source MetricsSource

	// SimulateSeed seeds the request generator behind Simulate. Zero
	// selects a fixed default.
	SimulateSeed int64

	Logger zerolog.Logger
}

// Service is the routing decision engine. Construct once with New, call
// Load before serving, and Close on shutdown. All methods are safe for
// concurrent use.
//
// The hot path, Decide, is purely in-memory: it performs one cache read
// and, for new decisions, one cache write. Disk I/O happens only at Load
// and on administrative mutations.
type Service struct {
	logger   zerolog.Logger
	store    *Store
	cacheTTL time.Duration

	// mu guards the configuration snapshot fields below. Mutations swap
	// whole documents (copy-on-write) so decisions in flight keep a
	// consistent view.
	mu       sync.RWMutex
	cfg      GlobalConfig
	policies map[string]*RoutingPolicy
	topo     *GeoTopology
	perf     map[string]PerformanceMetrics
	backends map[string]BackendState
	resolver *RegionResolver

	decisions *cache.Cache
	stats     *StatisticsCollector
	refresher *Refresher

	bgMu     sync.Mutex
	bgCancel context.CancelFunc

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Service. Call Load before first use.
func New(opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 300 * time.Second
	}
	if opts.Source == nil {
		opts.Source = NewSyntheticSource(0)
	}
	seed := opts.SimulateSeed
	if seed == 0 {
		seed = 1
	}

	s := &Service{
		logger:    opts.Logger.With().Str("component", "routing").Logger(),
		store:     NewStore(opts.DataDir),
		cacheTTL:  opts.CacheTTL,
		cfg:       *defaultGlobalConfig(),
		policies:  defaultPolicies(),
		topo:      defaultGeoTopology(),
		perf:      defaultPerformanceMetrics(),
		backends:  defaultBackends(),
		decisions: cache.New(opts.CacheTTL),
		stats:     NewStatisticsCollector(),
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // simulation traffic, not security
	}
	s.resolver = NewRegionResolver(s.topo)
	s.refresher = NewRefresher(s, opts.Source, opts.RefreshInterval)
	return s
}

// Load reads the four routing documents from disk, bootstrapping each from
// its built-in default on first run.
func (s *Service) Load() error {
	cfg, err := s.store.LoadConfig()
	if err != nil {
		return fmt.Errorf("load routing config: %w", err)
	}
	policies, err := s.store.LoadPolicies()
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}
	topo, err := s.store.LoadGeoTopology()
	if err != nil {
		return fmt.Errorf("load geo topology: %w", err)
	}
	perf, err := s.store.LoadPerformanceMetrics()
	if err != nil {
		return fmt.Errorf("load performance metrics: %w", err)
	}

	s.mu.Lock()
	s.cfg = *cfg
	s.policies = policies
	s.topo = topo
	s.perf = perf
	s.resolver = NewRegionResolver(topo)
	s.mu.Unlock()

	s.logger.Info().
		Int("policies", len(policies)).
		Int("regions", len(topo.Regions)).
		Int("backends", len(perf)).
		Msg("routing documents loaded")
	return nil
}

// Close stops background tasks. Safe to call multiple times.
func (s *Service) Close() error {
	s.StopBackgroundTasks()
	return nil
}

// Refresher exposes the metrics refresher for supervisor wiring.
func (s *Service) Refresher() *Refresher { return s.refresher }

// StartBackgroundTasks starts the metrics refresher if it is not already
// running. Reports whether a new loop was started.
func (s *Service) StartBackgroundTasks() bool {
	s.bgMu.Lock()
	defer s.bgMu.Unlock()

	if s.bgCancel != nil || s.refresher.Running() {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel
	go func() {
		_ = s.refresher.Serve(ctx)
	}()
	return true
}

// StopBackgroundTasks cancels a loop started by StartBackgroundTasks.
func (s *Service) StopBackgroundTasks() {
	s.bgMu.Lock()
	defer s.bgMu.Unlock()
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgCancel = nil
	}
}

// Decide answers one routing request. It never returns nil and never
// panics: failures on the decision path degrade to a fallback decision
// naming the default backend.
//
// Identical requests within the cache TTL return the identical decision
// (same decision ID) and do not touch the statistics counters.
func (s *Service) Decide(req *RoutingRequest) *RoutingDecision {
	if req == nil {
		req = &RoutingRequest{}
	}

	key := cache.GenerateKey("decision", req)
	if v, ok := s.decisions.Get(key); ok {
		if d, ok := v.(*RoutingDecision); ok {
			metrics.DecisionCacheHits.Inc()
			return d
		}
	}
	metrics.DecisionCacheMisses.Inc()

	start := time.Now()
	decision, category := s.computeSafely(req)
	decision.DecisionTimeMS = float64(time.Since(start).Microseconds()) / 1000.0

	s.stats.Record(decision, category)
	metrics.ObserveDecision(decision.PrimaryBackend, decision.AppliedPolicy, time.Since(start))
	s.decisions.SetWithTTL(key, decision, s.cacheTTL)

	return decision
}

// computeSafely runs the decision algorithm under a panic guard. Any
// failure yields the fallback decision instead of propagating.
func (s *Service) computeSafely(req *RoutingRequest) (decision *RoutingDecision, category ContentCategory) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("decision path failed, answering with fallback")
			metrics.DecisionFallbacks.Inc()
			decision = s.fallbackDecision(req)
			category = CategoryUnknown
		}
	}()
	return s.compute(req)
}

func (s *Service) compute(req *RoutingRequest) (*RoutingDecision, ContentCategory) {
	// Consistent snapshot. Mutations replace these documents wholesale, so
	// references stay valid without holding the lock through scoring.
	s.mu.RLock()
	cfg := s.cfg
	ps := &PolicySet{Policies: s.policies, DefaultName: s.cfg.DefaultPolicy}
	topo := s.topo
	perf := s.perf
	backends := s.backends
	resolver := s.resolver
	s.mu.RUnlock()

	op := req.Operation
	if op != OperationWrite {
		op = OperationRead
	}

	if !cfg.Enabled {
		return newDecision(op, defaultBackendFor(backends), "disabled", "", ""), CategoryUnknown
	}

	// Region resolution: explicit region, then client IP, then the first
	// preferred region.
	region := req.ClientRegion
	if region == "" && req.ClientIP != "" {
		region = resolver.Resolve(req.ClientIP)
	}
	if region == "" && len(topo.PreferredRegions) > 0 {
		region = topo.PreferredRegions[0]
	}

	contentType := ""
	category := CategoryUnknown
	if req.ContentAttributes != nil {
		contentType = req.ContentAttributes.ContentType
		category = ClassifyContent(contentType)
	}

	policy, policyName := ps.Select(req.PolicyName, req.ContentAttributes)

	excluded := stringSet(req.ExcludedBackends)
	required := stringSet(req.RequiredBackends)

	// Candidate enumeration order is fixed (sorted) so tie-breaks and cache
	// keys are deterministic across calls.
	candidates := make([]string, 0, len(backends)+len(required))
	for name := range backends {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)
	for _, name := range req.RequiredBackends {
		if _, known := backends[name]; !known {
			candidates = append(candidates, name)
		}
	}

	scorer := &Scorer{Metrics: perf, Topology: topo}
	scores := make([]BackendScore, 0, len(candidates))
	for _, name := range candidates {
		// Required backends are force-included as candidates even when the
		// environment has not flagged them available.
		available := backends[name].Available || required[name]
		if sc, ok := scorer.Score(name, available, op, category, policy, region, excluded); ok {
			scores = append(scores, *sc)
		}
	}
	RankScores(scores)

	qualified := make([]BackendScore, 0, len(scores))
	for _, sc := range scores {
		if sc.Score >= cfg.MinimumBackendScore || required[sc.Backend] {
			qualified = append(qualified, sc)
		}
	}

	var primary string
	replicas := []string{}
	switch {
	case len(qualified) > 0:
		primary = qualified[0].Backend
		n := req.ReplicationFactor
		if n > policy.MaxReplicas {
			n = policy.MaxReplicas
		}
		if n > len(qualified)-1 {
			n = len(qualified) - 1
		}
		for i := 1; i <= n; i++ {
			replicas = append(replicas, qualified[i].Backend)
		}
	case len(scores) > 0:
		// Nothing met the threshold; a usable answer beats an empty one.
		primary = scores[0].Backend
	default:
		primary = defaultBackendFor(backends)
	}

	d := newDecision(op, primary, policyName, region, contentType)
	d.Replicas = replicas
	d.BackendScores = scores
	return d, category
}

// fallbackDecision is the always-answer escape hatch for decision-path
// failures: default backend, no replicas, no score breakdown.
func (s *Service) fallbackDecision(req *RoutingRequest) *RoutingDecision {
	s.mu.RLock()
	backends := s.backends
	s.mu.RUnlock()

	op := OperationRead
	if req != nil && req.Operation == OperationWrite {
		op = OperationWrite
	}
	return newDecision(op, defaultBackendFor(backends), "fallback", "", "")
}

func newDecision(op Operation, primary, policyName, region, contentType string) *RoutingDecision {
	return &RoutingDecision{
		PrimaryBackend: primary,
		Replicas:       []string{},
		BackendScores:  []BackendScore{},
		AppliedPolicy:  policyName,
		ClientRegion:   region,
		ContentType:    contentType,
		Operation:      op,
		DecisionID:     uuid.New().String(),
		Timestamp:      time.Now().UTC(),
	}
}

// defaultBackendFor picks the hardcoded global fallback: ipfs when
// available, else local.
func defaultBackendFor(backends map[string]BackendState) string {
	if backends["ipfs"].Available {
		return "ipfs"
	}
	return "local"
}

// --- Administrative operations -----------------------------------------

// Config returns a copy of the global routing configuration.
func (s *Service) Config() GlobalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig validates and persists a new global configuration. The
// default policy must name a stored policy.
func (s *Service) UpdateConfig(cfg *GlobalConfig) error {
	if err := ValidateGlobalConfig(cfg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[cfg.DefaultPolicy]; !ok {
		return fmt.Errorf("%w: %q", ErrPolicyNotFound, cfg.DefaultPolicy)
	}
	if err := s.store.SaveConfig(cfg); err != nil {
		return err
	}
	s.cfg = *cfg
	s.logger.Info().Str("default_policy", cfg.DefaultPolicy).Msg("routing config updated")
	return nil
}

// Policies returns a copy of the policy table.
func (s *Service) Policies() map[string]*RoutingPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*RoutingPolicy, len(s.policies))
	for name, p := range s.policies {
		cp := *p
		out[name] = &cp
	}
	return out
}

// Policy returns one policy by name.
func (s *Service) Policy(name string) (*RoutingPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPolicyNotFound, name)
	}
	cp := *p
	return &cp, nil
}

// UpsertPolicy validates and stores a policy (create or replace by name),
// persisting the table.
func (s *Service) UpsertPolicy(p *RoutingPolicy) error {
	if err := ValidatePolicy(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*RoutingPolicy, len(s.policies)+1)
	for name, existing := range s.policies {
		next[name] = existing
	}
	cp := *p
	next[p.Name] = &cp

	if err := s.store.SavePolicies(next); err != nil {
		return err
	}
	s.policies = next
	s.logger.Info().Str("policy", p.Name).Msg("policy stored")
	return nil
}

// DeletePolicy removes a policy by name. Deleting the configured default
// policy is rejected; the caller must change the default first.
func (s *Service) DeletePolicy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == s.cfg.DefaultPolicy {
		return ErrDefaultPolicyDelete
	}
	if _, ok := s.policies[name]; !ok {
		return fmt.Errorf("%w: %q", ErrPolicyNotFound, name)
	}

	next := make(map[string]*RoutingPolicy, len(s.policies))
	for n, p := range s.policies {
		if n != name {
			next[n] = p
		}
	}
	if err := s.store.SavePolicies(next); err != nil {
		return err
	}
	s.policies = next
	s.logger.Info().Str("policy", name).Msg("policy deleted")
	return nil
}

// Regions returns the geographic topology document.
func (s *Service) Regions() GeoTopology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.topo
}

// PerformanceAll returns a copy of the performance document.
func (s *Service) PerformanceAll() map[string]PerformanceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PerformanceMetrics, len(s.perf))
	for name, m := range s.perf {
		out[name] = m
	}
	return out
}

// PerformanceFor returns one backend's performance figures.
func (s *Service) PerformanceFor(backend string) (PerformanceMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.perf[backend]
	if !ok {
		return PerformanceMetrics{}, fmt.Errorf("%w: %q", ErrBackendNotFound, backend)
	}
	return m, nil
}

// ApplyPerformanceMetrics swaps in a full replacement performance document
// and persists it. Readers see either the old or the new document, never a
// mix.
func (s *Service) ApplyPerformanceMetrics(next map[string]PerformanceMetrics) error {
	s.mu.Lock()
	s.perf = next
	s.mu.Unlock()

	return s.store.SavePerformanceMetrics(next)
}

// metricsSnapshot returns the current performance document reference plus
// the names of available backends, for refresher cycles.
func (s *Service) metricsSnapshot() (map[string]PerformanceMetrics, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	available := make([]string, 0, len(s.backends))
	for name, st := range s.backends {
		if st.Available {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return s.perf, available
}

// SetBackends replaces the backend availability table. The environment is
// the sole source of truth here; the engine never flips availability
// itself.
func (s *Service) SetBackends(backends map[string]BackendState) {
	next := make(map[string]BackendState, len(backends))
	for name, st := range backends {
		next[name] = st
	}

	s.mu.Lock()
	s.backends = next
	s.mu.Unlock()
}

// Backends returns a copy of the backend availability table.
func (s *Service) Backends() map[string]BackendState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]BackendState, len(s.backends))
	for name, st := range s.backends {
		out[name] = st
	}
	return out
}

// RefreshMetricsNow triggers a single refresh cycle synchronously.
func (s *Service) RefreshMetricsNow(ctx context.Context) {
	s.refresher.RunCycle(ctx)
}

// ClearCache drops all memoized decisions.
func (s *Service) ClearCache() {
	s.decisions.Clear()
}

// Statistics returns a snapshot of the usage counters.
func (s *Service) Statistics() StatisticsSnapshot {
	return s.stats.Snapshot()
}

// Status summarizes the engine for GET /routing/status.
type Status struct {
	Enabled          bool               `json:"enabled"`
	DefaultPolicy    string             `json:"default_policy"`
	Policies         []string           `json:"policies"`
	Backends         map[string]bool    `json:"backends"`
	Regions          []string           `json:"regions"`
	TotalDecisions   int64              `json:"total_decisions"`
	TopBackends      []NameCount        `json:"top_backends"`
	TopPolicies      []NameCount        `json:"top_policies"`
	AvgDecisionMS    float64            `json:"avg_decision_ms"`
	CacheHitRatePct  float64            `json:"cache_hit_rate_pct"`
	RefresherRunning bool               `json:"refresher_running"`
}

// CurrentStatus builds the status summary.
func (s *Service) CurrentStatus() Status {
	s.mu.RLock()
	cfg := s.cfg
	policyNames := make([]string, 0, len(s.policies))
	for name := range s.policies {
		policyNames = append(policyNames, name)
	}
	backends := make(map[string]bool, len(s.backends))
	for name, st := range s.backends {
		backends[name] = st.Available
	}
	regions := make([]string, 0, len(s.topo.Regions))
	for _, r := range s.topo.Regions {
		regions = append(regions, r.ID)
	}
	s.mu.RUnlock()

	sort.Strings(policyNames)
	stats := s.stats.Snapshot()

	return Status{
		Enabled:          cfg.Enabled,
		DefaultPolicy:    cfg.DefaultPolicy,
		Policies:         policyNames,
		Backends:         backends,
		Regions:          regions,
		TotalDecisions:   stats.TotalDecisions,
		TopBackends:      TopN(stats.ByBackend, 3),
		TopPolicies:      TopN(stats.ByPolicy, 3),
		AvgDecisionMS:    stats.AvgDecisionMS,
		CacheHitRatePct:  s.decisions.HitRate(),
		RefresherRunning: s.refresher.Running(),
	}
}

/// ContentTypeAnalysis is the answer to POST /routing/content-type-analysis:
// backend suitability for a MIME type without a full request object.
type ContentTypeAnalysis struct {
	ContentType  string          `json:"content_type"`
	Category     ContentCategory `json:"category"`
	Operation    Operation       `json:"operation"`
	Policy       string          `json:"policy"`
	Recommended  string          `json:"recommended"`
	Alternatives []string        `json:"alternatives"`
	Scores       []BackendScore  `json:"scores"`
}

// AnalyzeContentType scores all available backends for a MIME type and
// size under the default policy. Unlike Decide, the answer is not cached
// and does not enter the usage statistics.
func (s *Service) AnalyzeContentType(contentType string, sizeBytes int64, op Operation) ContentTypeAnalysis {
	attrs := &ContentAttributes{ContentType: contentType, SizeBytes: sizeBytes}
	decision, _ := s.computeSafely(&RoutingRequest{
		Operation:         op,
		ContentAttributes: attrs,
	})

	analysis := ContentTypeAnalysis{
		ContentType: contentType,
		Category:    ClassifyContent(contentType),
		Operation:   decision.Operation,
		Policy:      decision.AppliedPolicy,
		Recommended: decision.PrimaryBackend,
		Scores:      decision.BackendScores,
	}
	for _, sc := range decision.BackendScores {
		if sc.Backend == decision.PrimaryBackend {
			continue
		}
		analysis.Alternatives = append(analysis.Alternatives, sc.Backend)
		if len(analysis.Alternatives) == 2 {
			break
		}
	}
	return analysis
}

// SimulationReport summarizes synthetic traffic distribution.
type SimulationReport struct {
	Requests       int                `json:"requests"`
	ByBackend      map[string]int     `json:"by_backend"`
	BackendPct     map[string]float64 `json:"backend_pct"`
	ByPolicy       map[string]int     `json:"by_policy"`
	UniqueBackends int                `json:"unique_backends"`
}

var simulateContentTypes = []string{
	"image/png", "image/jpeg", "video/mp4", "audio/mpeg",
	"text/plain", "application/pdf", "application/json",
	"model/pytorch", "application/x-parquet", "application/octet-stream",
}

// Simulate runs n synthetic requests through Decide and reports the
// resulting backend distribution. A demo aid, not part of the decision
// contract; the generated decisions do enter statistics and cache like any
// other.
func (s *Service) Simulate(n int) SimulationReport {
	report := SimulationReport{
		Requests:   n,
		ByBackend:  make(map[string]int),
		BackendPct: make(map[string]float64),
		ByPolicy:   make(map[string]int),
	}

	for i := 0; i < n; i++ {
		req := s.syntheticRequest()
		d := s.Decide(req)
		report.ByBackend[d.PrimaryBackend]++
		report.ByPolicy[d.AppliedPolicy]++
	}

	for backend, count := range report.ByBackend {
		report.BackendPct[backend] = float64(count) / float64(n) * 100.0
	}
	report.UniqueBackends = len(report.ByBackend)
	return report
}

func (s *Service) syntheticRequest() *RoutingRequest {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	op := OperationRead
	if s.rng.Intn(2) == 0 {
		op = OperationWrite
	}
	return &RoutingRequest{
		Operation: op,
		ContentAttributes: &ContentAttributes{
			ContentType: simulateContentTypes[s.rng.Intn(len(simulateContentTypes))],
			SizeBytes:   int64(s.rng.Intn(2<<30)) + 1,
		},
		ReplicationFactor: s.rng.Intn(3),
	}
}

func stringSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
