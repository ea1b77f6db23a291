package osm

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/place"
)

// ReadAdmins implements §4.4's full algorithm: scan the dump for
// boundary=administrative relations at the configured levels, resolve each
// into a place.Place of kind admin, then normalize weights per level so the
// level-maximum becomes 1.0.
func ReadAdmins(src Source, adminLevels []int, cityLevel int, boundary BoundaryBuilder, logger *zap.Logger) ([]place.Place, error) {
	wantLevel := make(map[int]bool, len(adminLevels))
	for _, l := range adminLevels {
		wantLevel[l] = true
	}

	pred := Predicate{
		Relation: func(tags map[string]string) bool {
			if tags["boundary"] != "administrative" {
				return false
			}
			lvl, err := strconv.Atoi(tags["admin_level"])
			return err == nil && wantLevel[lvl]
		},
	}

	objs, err := src.GetObjsAndDeps(pred)
	if err != nil {
		return nil, err
	}

	claimedInsee := make(map[string]bool)
	var admins []place.Place

	for _, rel := range objs.Relations {
		p, ok := buildAdmin(rel, objs, boundary, cityLevel, claimedInsee, logger)
		if !ok {
			continue
		}
		admins = append(admins, p)
	}

	normalizeWeightsByLevel(admins)
	return admins, nil
}

func buildAdmin(rel Relation, objs Objects, boundary BoundaryBuilder, cityLevel int, claimedInsee map[string]bool, logger *zap.Logger) (place.Place, bool) {
	level, err := strconv.Atoi(rel.Tags["admin_level"])
	if err != nil {
		logger.Warn("osm: unparsable admin_level, skipping relation", zap.Int64("relation_id", rel.ID))
		return place.Place{}, false
	}

	name := rel.Tags["name"]
	if name == "" {
		logger.Warn("osm: admin relation has no name, skipping", zap.Int64("relation_id", rel.ID))
		return place.Place{}, false
	}

	centroid, shape, haveBoundary := boundary.Build(rel, objs.Ways, objs.Nodes)

	var centreNode Node
	haveCentreNode := false
	for _, m := range rel.Members {
		if m.Type == MemberNode && m.Role == "admin_centre" {
			if n, ok := objs.Nodes[m.Ref]; ok {
				centreNode = n
				haveCentreNode = true
				break
			}
		}
	}
	if haveCentreNode {
		centroid = place.Coord{Lon: centreNode.Lon, Lat: centreNode.Lat}
	} else if !haveBoundary {
		logger.Warn("osm: admin relation has no admin_centre and no resolvable boundary", zap.Int64("relation_id", rel.ID))
	}

	insee := strings.TrimLeft(rel.Tags["ref:INSEE"], "0")
	var id string
	switch {
	case insee != "" && !claimedInsee[insee]:
		claimedInsee[insee] = true
		id = place.AdminID(insee, rel.ID)
	case insee != "":
		logger.Warn("osm: INSEE already claimed, falling back to relation id", zap.String("insee", insee), zap.Int64("relation_id", rel.ID))
		id = place.AdminID("", rel.ID)
	default:
		id = place.AdminID("", rel.ID)
	}

	var weight float64
	if pop, err := strconv.ParseFloat(rel.Tags["population"], 64); err == nil {
		weight = pop
	} else if haveCentreNode {
		if pop, err := strconv.ParseFloat(centreNode.Tags["population"], 64); err == nil {
			weight = pop
		}
	}

	zips := place.SortedUniqueZips(rel.Tags["addr:postcode"], rel.Tags["postal_code"])
	zoneType := place.ZoneNone
	if level == cityLevel {
		zoneType = place.ZoneCity
	}
	countryCodes := countryCodesFromTags(rel.Tags)

	return place.Place{
		Kind:         place.KindAdmin,
		ID:           id,
		Name:         name,
		Label:        name + place.FormatZipCodes(zips),
		Weight:       weight,
		Coord:        centroid,
		ZipCodes:     zips,
		CountryCodes: countryCodes,
		Admin: &place.Admin{
			Insee:      insee,
			AdminLevel: level,
			ZoneType:   zoneType,
			ZipCodes:   zips,
			Boundary:   shape,
		},
	}, true
}

// countryCodesFromTags extracts the ISO3166-1 alpha-2 country code carried
// by country-level admin relations (§4.4's "country_codes ... derived
// from OSM tags"); most admin levels carry none, leaving Street's folded
// country_codes to inherit from whichever ancestor in its hierarchy does.
func countryCodesFromTags(tags map[string]string) []string {
	if cc := tags["ISO3166-1"]; cc != "" {
		return []string{strings.ToUpper(cc)}
	}
	if cc := tags["ISO3166-1:alpha2"]; cc != "" {
		return []string{strings.ToUpper(cc)}
	}
	return nil
}

// normalizeWeightsByLevel divides every admin's weight by its level's
// maximum weight (§4.4 step 3). Levels where every admin has weight 0 are
// left untouched.
func normalizeWeightsByLevel(admins []place.Place) {
	maxByLevel := make(map[int]float64)
	for i := range admins {
		lvl := admins[i].Admin.AdminLevel
		if admins[i].Weight > maxByLevel[lvl] {
			maxByLevel[lvl] = admins[i].Weight
		}
	}
	for i := range admins {
		lvl := admins[i].Admin.AdminLevel
		max := maxByLevel[lvl]
		if max > 0 {
			admins[i].Weight /= max
		}
	}
}
