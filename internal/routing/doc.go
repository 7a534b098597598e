// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

// Package routing implements the content-routing decision engine.
//
// Given a storage or retrieval request (operation, content attributes,
// client location), the engine selects which storage backend(s) should
// service it, using weighted policies over cost, performance, and
// reliability, adjusted for geography and content type. The engine decides;
// it never executes storage operations itself.
//
// The public entry point is Service.Decide, which always returns a usable
// decision: internal failures on the decision path degrade to a fallback
// decision instead of surfacing as errors.
//
// Persistent state is four JSON documents (global config, policies, geo
// topology, performance metrics) managed by Store, each bootstrapped from
// an in-memory default on first run. Backend availability is injected from
// outside through Service.SetBackends; the engine treats it as read-only
// truth.
//
// A note on policy selection: when a caller names a policy whose content
// filters reject the request's attributes, the engine silently substitutes
// the default policy. This is deliberate, carried-over behavior, not a bug;
// see PolicySet.Select and its tests before changing it.
package routing
