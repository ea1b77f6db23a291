package osm

import (
	"strings"

	"github.com/geoplace/geocore/internal/place"
)

// FormatStreetLabel builds a street's display label from its name and admin
// hierarchy (§4.5's "label formatter", delegated in spec but given a
// concrete default here): "<name> (<city>, <country>)" trimming whichever
// of the two is absent, with no parenthetical at all when neither resolved.
// Admins of other zone types (State, StateDistrict) are not used.
func FormatStreetLabel(name string, chain AdminHierarchy) string {
	if len(chain) == 0 {
		return name
	}

	var city, country string
	for _, c := range chain {
		if c.Admin == nil {
			continue
		}
		switch c.Admin.ZoneType {
		case place.ZoneCity:
			if city == "" {
				city = c.Name
			}
		case place.ZoneCountry:
			if country == "" {
				country = c.Name
			}
		}
	}

	var parts []string
	if city != "" {
		parts = append(parts, city)
	}
	if country != "" {
		parts = append(parts, country)
	}
	if len(parts) == 0 {
		return name
	}
	return name + " (" + strings.Join(parts, ", ") + ")"
}
