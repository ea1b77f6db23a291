package osm

import (
	"sort"

	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/place"
)

var invalidHighwayTags = map[string]bool{
	"bus_guideway": true,
	"escape":       true,
	"bus_stop":     true,
	"elevator":     true,
	"platform":     true,
}

func isValidHighwayWay(tags map[string]string) bool {
	hw := tags["highway"]
	return hw != "" && !invalidHighwayTags[hw] && tags["name"] != ""
}

func isAssociatedStreetRelation(tags map[string]string) bool {
	return tags["type"] == "associatedStreet"
}

// ReadStreets implements §4.5's full algorithm: an associatedStreet
// relation pass followed by a standalone-way pass over candidate ways not
// already claimed by a relation, deduplicating by (name, containing city)
// and propagating the containing city's normalized weight onto each
// resulting street document.
func ReadStreets(src Source, geofinder Geofinder, logger *zap.Logger) ([]place.Place, error) {
	pred := Predicate{
		Relation: isAssociatedStreetRelation,
		Way:      isValidHighwayWay,
	}
	objs, err := src.GetObjsAndDeps(pred)
	if err != nil {
		return nil, err
	}

	streetInRelation := make(map[int64]bool)
	var results []place.Place

	// Relations are processed in id order, not map iteration order: §4.5's
	// determinism note requires the same PBF to produce the same street
	// ids in the same order across ingestion runs.
	relIDs := make([]int64, 0, len(objs.Relations))
	for id := range objs.Relations {
		relIDs = append(relIDs, id)
	}
	sort.Slice(relIDs, func(i, j int) bool { return relIDs[i] < relIDs[j] })

	for _, relID := range relIDs {
		rel := objs.Relations[relID]
		if !isAssociatedStreetRelation(rel.Tags) {
			continue
		}
		for _, m := range rel.Members {
			streetInRelation[m.Ref] = true
		}

		var candidate Way
		var found bool
		for _, m := range rel.Members {
			if m.Type != MemberWay || m.Role != "street" {
				continue
			}
			w, ok := objs.Ways[m.Ref]
			if !ok || !isValidHighwayWay(w.Tags) {
				continue
			}
			candidate = w
			found = true
			break
		}
		if !found {
			continue
		}

		coord, ok := wayMidpoint(candidate, objs.Nodes)
		if !ok {
			logger.Warn("osm: associatedStreet way has no resolvable coord, skipping", zap.Int64("relation_id", rel.ID))
			continue
		}
		hierarchies := sortedHierarchies(geofinder.GetWithGranularity(coord, place.ZoneCity))

		name := rel.Tags["name"]
		if name == "" {
			name = candidate.Tags["name"]
		}

		results = append(results, emitStreetDocs(name, coord, hierarchies, func(i, n int) string {
			return place.StreetRelationID(rel.ID, i, n)
		})...)
	}

	type dedupKey struct {
		name   string
		cityID string
	}
	dedup := make(map[dedupKey]int64)

	for id, way := range objs.Ways {
		if streetInRelation[id] || !isValidHighwayWay(way.Tags) {
			continue
		}
		coord, ok := wayMidpoint(way, objs.Nodes)
		if !ok {
			continue
		}
		hierarchies := geofinder.GetWithGranularity(coord, place.ZoneCity)

		cityID := ""
		if city, ok := firstCity(hierarchies); ok {
			cityID = city.ID
		}

		key := dedupKey{name: way.Tags["name"], cityID: cityID}
		if existing, ok := dedup[key]; !ok || id < existing {
			dedup[key] = id
		}
	}

	// Sort by minID before emitting: map iteration order is randomized, and
	// §4.5's determinism note requires the same PBF to produce the same
	// street ids in the same order across ingestion runs.
	minIDs := make([]int64, 0, len(dedup))
	keyByMinID := make(map[int64]dedupKey, len(dedup))
	for key, minID := range dedup {
		minIDs = append(minIDs, minID)
		keyByMinID[minID] = key
	}
	sort.Slice(minIDs, func(i, j int) bool { return minIDs[i] < minIDs[j] })

	for _, minID := range minIDs {
		key := keyByMinID[minID]
		way, ok := objs.Ways[minID]
		if !ok {
			continue
		}
		coord, ok := wayMidpoint(way, objs.Nodes)
		if !ok {
			continue
		}
		hierarchies := sortedHierarchies(geofinder.GetWithGranularity(coord, place.ZoneCity))

		results = append(results, emitStreetDocs(key.name, coord, hierarchies, func(i, n int) string {
			return place.StreetWayID(minID, i, n)
		})...)
	}

	return results, nil
}

// firstCity scans a set of candidate hierarchies for the first one
// carrying a city admin, used only to build the standalone-way pass's
// dedup key (§4.5's "(name, optional city-id)").
func firstCity(hierarchies []AdminHierarchy) (AdminChain, bool) {
	for _, h := range hierarchies {
		if city, ok := h.City(); ok {
			return city, true
		}
	}
	return AdminChain{}, false
}

// emitStreetDocs builds one street document per admin hierarchy, applying
// idBuilder(index, total) to derive each document's id (§4.5's "one
// document per admin chain"), carrying the full ordered hierarchy into
// Admins, and folding CountryCodes/ZipCodes over it (§3's "inherited
// country codes and zip codes").
func emitStreetDocs(name string, coord place.Coord, hierarchies []AdminHierarchy, idBuilder func(i, n int) string) []place.Place {
	if len(hierarchies) == 0 {
		return []place.Place{{
			Kind:   place.KindStreet,
			ID:     idBuilder(0, 1),
			Name:   name,
			Label:  name,
			Coord:  coord,
			Street: &place.Street{Name: name},
		}}
	}

	docs := make([]place.Place, 0, len(hierarchies))
	for i, h := range hierarchies {
		weight := computeStreetWeight(h)
		admins := adminRefs(h)
		countryCodes := h.CountryCodes()
		zipCodes := h.ZipCodes()
		docs = append(docs, place.Place{
			Kind:         place.KindStreet,
			ID:           idBuilder(i, len(hierarchies)),
			Name:         name,
			Label:        FormatStreetLabel(name, h),
			Weight:       weight,
			Coord:        coord,
			Admins:       admins,
			CountryCodes: countryCodes,
			ZipCodes:     zipCodes,
			Street: &place.Street{
				Name:         name,
				Admins:       admins,
				CountryCodes: countryCodes,
				ZipCodes:     zipCodes,
			},
		})
	}
	return docs
}

// adminRefs converts a resolved hierarchy into the weak AdminRef list
// carried by a document's administrative_regions field, preserving the
// hierarchy's outermost-first order.
func adminRefs(h AdminHierarchy) []place.AdminRef {
	refs := make([]place.AdminRef, len(h))
	for i, c := range h {
		refs[i] = place.AdminRef{ID: c.ID, Name: c.Name, Level: c.Level}
	}
	return refs
}

// computeStreetWeight copies the containing city admin's normalized weight
// onto the street, per §4.5's post-processing step. A hierarchy resolving
// no city (no containing city admin) leaves the street at weight 0.
func computeStreetWeight(h AdminHierarchy) float64 {
	if city, ok := h.City(); ok {
		return city.Weight
	}
	return 0
}

// sortedHierarchies orders admin hierarchies deterministically (by their
// city id, or their outermost admin's id when no city is present) so that
// the `-0`, `-1` id suffixes assigned across hierarchies are reproducible
// across ingestion runs (§4.5's Determinism note), independent of
// whatever order the geofinder happened to return them in.
func sortedHierarchies(hierarchies []AdminHierarchy) []AdminHierarchy {
	sorted := make([]AdminHierarchy, len(hierarchies))
	copy(sorted, hierarchies)
	sort.Slice(sorted, func(i, j int) bool { return hierarchyKey(sorted[i]) < hierarchyKey(sorted[j]) })
	return sorted
}

func hierarchyKey(h AdminHierarchy) string {
	if city, ok := h.City(); ok {
		return city.ID
	}
	if len(h) > 0 {
		return h[0].ID
	}
	return ""
}

// wayMidpoint resolves a way's representative coordinate as the midpoint
// node of its node sequence (§4.5's "look up the midpoint node of the way").
func wayMidpoint(w Way, nodes map[int64]Node) (place.Coord, bool) {
	if len(w.NodeIDs) == 0 {
		return place.Coord{}, false
	}
	mid := w.NodeIDs[len(w.NodeIDs)/2]
	n, ok := nodes[mid]
	if !ok {
		return place.Coord{}, false
	}
	return place.Coord{Lon: n.Lon, Lat: n.Lat}, true
}
