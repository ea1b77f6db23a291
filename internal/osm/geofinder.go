package osm

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/geoplace/geocore/internal/place"
)

// Granularity is the admin-chain anchor level passed to GetWithGranularity
// ("City", "State", ...).
type Granularity = place.ZoneType

// AdminChain is one admin found to contain a coordinate, paired with its
// resolved document id and the fields street ingestion needs (§4.5's city
// weight propagation, the label formatter's hierarchy, §3's inherited
// country/zip codes).
type AdminChain struct {
	ID           string
	Admin        *place.Admin
	Name         string
	Level        int
	Weight       float64
	CountryCodes []string
	ZipCodes     []string
}

// IsCity reports whether this chain entry is the city-level admin
// containing the point, per §4.5's "find the containing city admin".
func (c AdminChain) IsCity() bool { return c.Admin.IsCity() }

// AdminHierarchy is the full ordered ancestor chain for one candidate
// containment, outermost admin first, per §3's "list of containing
// administrative regions (ordered outermost-first)".
type AdminHierarchy []AdminChain

// City returns the city-level admin within the hierarchy, if any.
func (h AdminHierarchy) City() (AdminChain, bool) {
	for _, c := range h {
		if c.IsCity() {
			return c, true
		}
	}
	return AdminChain{}, false
}

// CountryCodes folds every non-empty country code carried by the
// hierarchy's admins into a sorted, deduplicated list (§3's "inherited
// country codes").
func (h AdminHierarchy) CountryCodes() []string {
	return foldCodes(h, func(c AdminChain) []string { return c.CountryCodes })
}

// ZipCodes folds every admin's zip codes in the hierarchy the same way
// (§3's "inherited ... zip codes").
func (h AdminHierarchy) ZipCodes() []string {
	return foldCodes(h, func(c AdminChain) []string { return c.ZipCodes })
}

func foldCodes(h AdminHierarchy, pick func(AdminChain) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range h {
		for _, code := range pick(c) {
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// Geofinder answers "which admin hierarchies contain this point", the
// delegated spatial-index collaborator street ingestion needs to attach
// administrative_regions to a street (§4.5) and to resolve a point's
// containing City for weight propagation. A concrete index over
// boundaries is built once from the ingested admins and reused for every
// street lookup.
type Geofinder interface {
	// GetWithGranularity returns the full ordered admin hierarchy
	// (outermost-first) for every distinct candidate containment of
	// coord, each anchored at an admin whose zone type matches
	// granularity plus every other non-anchor admin also containing coord,
	// narrower or broader
	// (§4.5's "admins_geofinder.get_with_granularity(coord, City) ...
	// returning a list of admin chains"). When granularity is empty,
	// every containing admin is folded into a single hierarchy. The
	// geofinder may return multiple overlapping hierarchies when admin
	// boundaries overlap.
	GetWithGranularity(coord place.Coord, granularity Granularity) []AdminHierarchy
}

// admin entry kept by RingGeofinder for containment testing.
type ringEntry struct {
	chain AdminChain
	ring  orb.Polygon
}

// RingGeofinder is a reference Geofinder implementation doing a brute-force
// point-in-polygon scan with github.com/paulmach/orb. It trades index
// build time for simplicity; adequate for country-sized extracts and for
// tests. A production deployment ingesting planet-scale data would swap
// this for an R-tree-backed index without changing the interface.
type RingGeofinder struct {
	entries []ringEntry
}

// NewRingGeofinder builds a Geofinder from admin documents (as produced by
// ReadAdmins) whose Boundary shape carries an orb.Polygon (produced by
// OrbBoundaryBuilder). Admins without a resolved polygon are skipped: they
// can still be returned as documents, just never as a containing admin for
// another place.
func NewRingGeofinder(admins []place.Place) *RingGeofinder {
	g := &RingGeofinder{}
	for i := range admins {
		a := admins[i]
		if a.Admin == nil || a.Admin.Boundary == nil {
			continue
		}
		poly, ok := a.Admin.Boundary.Coordinates.(orb.Polygon)
		if !ok {
			continue
		}
		g.entries = append(g.entries, ringEntry{
			chain: AdminChain{
				ID:           a.ID,
				Admin:        a.Admin,
				Name:         a.Name,
				Level:        a.Admin.AdminLevel,
				Weight:       a.Weight,
				CountryCodes: a.CountryCodes,
				ZipCodes:     a.Admin.ZipCodes,
			},
			ring: poly,
		})
	}
	return g
}

func (g *RingGeofinder) GetWithGranularity(coord place.Coord, granularity Granularity) []AdminHierarchy {
	pt := orb.Point{coord.Lon, coord.Lat}
	var hits []AdminChain
	for _, e := range g.entries {
		if planar.PolygonContains(e.ring, pt) {
			hits = append(hits, e.chain)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Level > hits[j].Level })
	return buildHierarchies(hits, granularity)
}

// buildHierarchies groups an unfiltered, most-specific-first containment
// list into one hierarchy per candidate anchored at granularity: every
// admin matching granularity found at the point anchors its own
// hierarchy, combined with every other (broader or narrower) admin also
// containing the point, re-sorted and reversed into outermost-first
// order. A point contained by no admin at granularity still produces a
// single hierarchy of whatever admins do contain it (or none at all).
func buildHierarchies(hits []AdminChain, granularity Granularity) []AdminHierarchy {
	if len(hits) == 0 {
		return nil
	}
	if granularity == "" {
		return []AdminHierarchy{reverseChains(hits)}
	}

	var anchors, others []AdminChain
	for _, c := range hits {
		if c.Admin != nil && c.Admin.ZoneType == granularity {
			anchors = append(anchors, c)
		} else {
			others = append(others, c)
		}
	}
	if len(anchors) == 0 {
		return []AdminHierarchy{reverseChains(hits)}
	}

	hierarchies := make([]AdminHierarchy, 0, len(anchors))
	for _, anchor := range anchors {
		combined := make([]AdminChain, 0, len(others)+1)
		combined = append(combined, others...)
		combined = append(combined, anchor)
		sort.Slice(combined, func(i, j int) bool { return combined[i].Level > combined[j].Level })
		hierarchies = append(hierarchies, reverseChains(combined))
	}
	return hierarchies
}

// reverseChains flips a most-specific-first admin list (as scanned off
// the index) into the outermost-first order §3 requires for Place.Admins.
func reverseChains(chains []AdminChain) AdminHierarchy {
	out := make(AdminHierarchy, len(chains))
	for i, c := range chains {
		out[len(chains)-1-i] = c
	}
	return out
}
