package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplace/geocore/internal/place"
)

// Haversine(p, p) == 0 for any p (§8's round-trip property).
func TestHaversine_SamePointIsZero(t *testing.T) {
	points := []place.Coord{
		{Lon: 2.3522, Lat: 48.8566},
		{Lon: -0.1276, Lat: 51.5072},
		{Lon: 0, Lat: 0},
		{Lon: 179.9, Lat: -89.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0.0, Haversine(p, p), 1e-9)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	paris := place.Coord{Lon: 2.3522, Lat: 48.8566}
	london := place.Coord{Lon: -0.1276, Lat: 51.5072}
	d := Haversine(paris, london)
	// Paris-London great-circle distance is close to 344km.
	assert.InDelta(t, 344000, d, 5000)
}
