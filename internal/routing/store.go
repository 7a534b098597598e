// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Document file names under the data directory.
const (
	configDocument   = "routing_config.json"
	policiesDocument = "routing_policies.json"
	geoDocument      = "geo_topology.json"
	metricsDocument  = "performance_metrics.json"
)

// Store persists the four routing JSON documents under a data directory.
// Each document is written atomically (temp file + rename) so a reader
// never observes a partially-written document.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first save if it does not exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadConfig loads the global routing configuration, bootstrapping the
// document from the built-in default when no file exists.
func (s *Store) LoadConfig() (*GlobalConfig, error) {
	cfg := &GlobalConfig{}
	found, err := s.loadDocument(configDocument, cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = defaultGlobalConfig()
		if err := s.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// SaveConfig persists the global routing configuration.
func (s *Store) SaveConfig(cfg *GlobalConfig) error {
	return s.saveDocument(configDocument, cfg)
}

// LoadPolicies loads the policy table, bootstrapping defaults on first run.
func (s *Store) LoadPolicies() (map[string]*RoutingPolicy, error) {
	policies := map[string]*RoutingPolicy{}
	found, err := s.loadDocument(policiesDocument, &policies)
	if err != nil {
		return nil, err
	}
	if !found {
		policies = defaultPolicies()
		if err := s.SavePolicies(policies); err != nil {
			return nil, err
		}
	}
	return policies, nil
}

// SavePolicies persists the policy table.
func (s *Store) SavePolicies(policies map[string]*RoutingPolicy) error {
	return s.saveDocument(policiesDocument, policies)
}

// LoadGeoTopology loads the region topology, bootstrapping defaults on
// first run.
func (s *Store) LoadGeoTopology() (*GeoTopology, error) {
	topo := &GeoTopology{}
	found, err := s.loadDocument(geoDocument, topo)
	if err != nil {
		return nil, err
	}
	if !found {
		topo = defaultGeoTopology()
		if err := s.SaveGeoTopology(topo); err != nil {
			return nil, err
		}
	}
	return topo, nil
}

// SaveGeoTopology persists the region topology.
func (s *Store) SaveGeoTopology(topo *GeoTopology) error {
	return s.saveDocument(geoDocument, topo)
}

// LoadPerformanceMetrics loads the performance document, bootstrapping
// defaults on first run.
func (s *Store) LoadPerformanceMetrics() (map[string]PerformanceMetrics, error) {
	m := map[string]PerformanceMetrics{}
	found, err := s.loadDocument(metricsDocument, &m)
	if err != nil {
		return nil, err
	}
	if !found {
		m = defaultPerformanceMetrics()
		if err := s.SavePerformanceMetrics(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SavePerformanceMetrics persists the performance document.
func (s *Store) SavePerformanceMetrics(m map[string]PerformanceMetrics) error {
	return s.saveDocument(metricsDocument, m)
}

// loadDocument reads one JSON document into v. The second return value
// reports whether the file existed.
func (s *Store) loadDocument(name string, v interface{}) (bool, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// saveDocument writes one JSON document atomically.
func (s *Store) saveDocument(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
