package autocomplete

import (
	"math"

	"github.com/geoplace/geocore/internal/place"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between a and b in meters.
// Haversine(p, p) == 0 for any p (§8's round-trip property).
func Haversine(a, b place.Coord) float64 {
	lat1, lat2 := degToRad(a.Lat), degToRad(b.Lat)
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
