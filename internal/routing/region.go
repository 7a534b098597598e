// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import (
	"net/netip"
)

// RegionResolver maps a client IP address to a region ID.
//
// Resolution order: first containing CIDR match in configured region order,
// then a coarse first-octet heuristic for globally routable addresses, then
// the first configured preferred region. Resolve never errors; an empty
// result is a valid terminal state.
type RegionResolver struct {
	networks  []regionNetwork
	preferred []string
}

type regionNetwork struct {
	prefix   netip.Prefix
	regionID string
}

// NewRegionResolver builds a resolver from the topology. CIDR ranges are
// parsed once; malformed ranges are skipped.
func NewRegionResolver(topo *GeoTopology) *RegionResolver {
	r := &RegionResolver{}
	if topo == nil {
		return r
	}
	for _, region := range topo.Regions {
		for _, cidr := range region.IPRanges {
			prefix, err := netip.ParsePrefix(cidr)
			if err != nil {
				continue
			}
			r.networks = append(r.networks, regionNetwork{prefix: prefix, regionID: region.ID})
		}
	}
	r.preferred = append(r.preferred, topo.PreferredRegions...)
	return r
}

// Resolve maps an IP address to a region ID, or "" when no region can be
// determined.
func (r *RegionResolver) Resolve(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return r.fallbackRegion()
	}
	addr = addr.Unmap()

	// Configured CIDR ranges win, first match in configuration order.
	for _, n := range r.networks {
		if n.prefix.Contains(addr) {
			return n.regionID
		}
	}

	if region := octetHeuristicRegion(addr); region != "" {
		return region
	}

	return r.fallbackRegion()
}

// octetHeuristicRegion maps a globally routable IPv4 address to one of four
// example regions based on its first octet. A demonstration fallback only;
// real deployments are expected to cover their clients with CIDR ranges.
func octetHeuristicRegion(addr netip.Addr) string {
	if !addr.Is4() || !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return ""
	}
	switch octet := addr.As4()[0]; {
	case octet < 64:
		return "us-east"
	case octet < 128:
		return "us-west"
	case octet < 192:
		return "eu-west"
	default:
		return "ap-northeast"
	}
}

func (r *RegionResolver) fallbackRegion() string {
	if len(r.preferred) > 0 {
		return r.preferred[0]
	}
	return ""
}
