// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Policy-related sentinel errors. The API layer maps these to 404/400.
var (
	// ErrPolicyNotFound indicates an unknown policy name.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDefaultPolicyDelete indicates an attempt to delete the policy that
	// is currently configured as the default.
	ErrDefaultPolicyDelete = errors.New("cannot delete the default policy; change default_policy first")
)

var validate = validator.New()

// PolicySet is the in-memory policy table plus the configured default
// policy name. It is a value assembled by the Service under its lock; the
// methods themselves do no locking.
type PolicySet struct {
	Policies    map[string]*RoutingPolicy
	DefaultName string
}

// Select returns the policy to apply for a request: the request's named
// policy when known and its content filters accept the request's
// attributes, else the default policy.
//
// A named policy whose filters reject the attributes is silently replaced
// by the default. Deliberate behavior; callers relying on strict policy
// enforcement must pre-validate with MatchesFilters.
func (ps *PolicySet) Select(policyName string, attrs *ContentAttributes) (*RoutingPolicy, string) {
	if policyName != "" {
		if p, ok := ps.Policies[policyName]; ok {
			if MatchesFilters(p, attrs) {
				return p, policyName
			}
		}
	}
	if p, ok := ps.Policies[ps.DefaultName]; ok {
		return p, ps.DefaultName
	}
	// Degenerate table without the default. Neutral weights keep scoring
	// defined.
	return &RoutingPolicy{
		Name:              ps.DefaultName,
		CostWeight:        0.33,
		PerformanceWeight: 0.33,
		ReliabilityWeight: 0.34,
		MaxReplicas:       1,
	}, ps.DefaultName
}

// MatchesFilters reports whether a policy's content filters accept the
// given attributes. Policies without filters accept everything; requests
// without attributes fail size/type filters only if a filter demands a
// value the request cannot supply.
func MatchesFilters(p *RoutingPolicy, attrs *ContentAttributes) bool {
	f := p.ContentFilters
	if f == nil {
		return true
	}
	if attrs == nil {
		return f.MinSizeMB == nil && f.MaxSizeMB == nil && len(f.ContentTypes) == 0
	}

	sizeMB := float64(attrs.SizeBytes) / (1024 * 1024)
	if f.MinSizeMB != nil && sizeMB < *f.MinSizeMB {
		return false
	}
	if f.MaxSizeMB != nil && sizeMB > *f.MaxSizeMB {
		return false
	}

	if len(f.ContentTypes) > 0 {
		matched := false
		mime := strings.ToLower(attrs.ContentType)
		for _, t := range f.ContentTypes {
			if strings.Contains(mime, strings.ToLower(t)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ValidatePolicy checks a policy for storage: field ranges via validator
// tags plus the cross-field weight-sum invariant.
func ValidatePolicy(p *RoutingPolicy) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid policy %q: %w", p.Name, err)
	}

	sum := p.CostWeight + p.PerformanceWeight + p.ReliabilityWeight
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("invalid policy %q: weights sum to %.4f, must be 1.0 within %.2f",
			p.Name, sum, WeightSumTolerance)
	}

	for backend, factor := range p.BackendPreferences {
		if factor < 0 {
			return fmt.Errorf("invalid policy %q: negative preference %.2f for backend %q",
				p.Name, factor, backend)
		}
	}
	return nil
}

// ValidateGlobalConfig checks the global routing configuration document.
func ValidateGlobalConfig(cfg *GlobalConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid routing config: %w", err)
	}
	return nil
}
