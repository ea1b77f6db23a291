package osm

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplace/geocore/internal/place"
)

func squareAdmin(id, name string, level int, zoneType place.ZoneType, weight float64) place.Place {
	ring := orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}, {0, 0}}
	return place.Place{
		ID:     id,
		Name:   name,
		Weight: weight,
		Admin: &place.Admin{
			AdminLevel: level,
			ZoneType:   zoneType,
			Boundary:   &place.Shape{Type: "Polygon", Coordinates: orb.Polygon{ring}},
		},
	}
}

func TestRingGeofinder_ContainmentAndGranularity(t *testing.T) {
	admins := []place.Place{
		squareAdmin("admin:fr:city", "City", 8, place.ZoneCity, 0.7),
		squareAdmin("admin:fr:state", "State", 4, place.ZoneState, 0.3),
	}
	g := NewRingGeofinder(admins)

	inside := place.Coord{Lon: 1, Lat: 1}

	unfiltered := g.GetWithGranularity(inside, "")
	require.Len(t, unfiltered, 1, "every containing admin is folded into a single hierarchy when granularity is empty")
	require.Len(t, unfiltered[0], 2)
	assert.Equal(t, "admin:fr:state", unfiltered[0][0].ID, "outermost admin first")
	assert.Equal(t, "admin:fr:city", unfiltered[0][1].ID, "most specific admin last")

	cityOnly := g.GetWithGranularity(inside, place.ZoneCity)
	require.Len(t, cityOnly, 1, "one hierarchy per candidate anchored at the requested granularity")
	require.Len(t, cityOnly[0], 2, "the hierarchy carries every broader admin too, not just the anchor")
	assert.Equal(t, "admin:fr:state", cityOnly[0][0].ID)
	assert.Equal(t, "admin:fr:city", cityOnly[0][1].ID)
	city, ok := cityOnly[0].City()
	require.True(t, ok)
	assert.Equal(t, "admin:fr:city", city.ID)

	outside := place.Coord{Lon: 10, Lat: 10}
	assert.Empty(t, g.GetWithGranularity(outside, ""))
}

func TestRingGeofinder_MultipleAnchorsProduceOverlappingHierarchies(t *testing.T) {
	admins := []place.Place{
		squareAdmin("admin:fr:cityA", "City A", 10, place.ZoneCity, 0.4),
		squareAdmin("admin:fr:cityB", "City B", 10, place.ZoneCity, 0.8),
		squareAdmin("admin:fr:state", "State", 4, place.ZoneState, 0.3),
	}
	g := NewRingGeofinder(admins)

	inside := place.Coord{Lon: 1, Lat: 1}
	hierarchies := g.GetWithGranularity(inside, place.ZoneCity)
	require.Len(t, hierarchies, 2, "one hierarchy per overlapping city anchor")

	var cityIDs []string
	for _, h := range hierarchies {
		require.Len(t, h, 2, "each hierarchy carries its own city plus the shared state")
		city, ok := h.City()
		require.True(t, ok)
		cityIDs = append(cityIDs, city.ID)
		assert.Equal(t, "admin:fr:state", h[0].ID, "the shared state is still outermost")
	}
	assert.ElementsMatch(t, []string{"admin:fr:cityA", "admin:fr:cityB"}, cityIDs)
}

func TestRingGeofinder_SkipsAdminsWithoutBoundary(t *testing.T) {
	admins := []place.Place{{ID: "admin:fr:x", Admin: &place.Admin{}}}
	g := NewRingGeofinder(admins)
	assert.Empty(t, g.entries)
}
