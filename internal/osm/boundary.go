package osm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/geoplace/geocore/internal/place"
)

// BoundaryBuilder resolves an admin relation's polygon boundary and
// centroid. Boundary resolution proper (ring assembly from incomplete or
// self-intersecting way soup) is delegated per the Non-goals;
// OrbBoundaryBuilder below is a concrete, runnable default for the common
// well-formed case.
type BoundaryBuilder interface {
	// Build assembles rel's member ways into a polygon, returning the
	// polygon's centroid. ok is false when no closed ring could be formed
	// (e.g. missing member ways). Callers take the coordinate from the
	// admin_centre node when there is one and use the centroid only
	// without it.
	Build(rel Relation, ways map[int64]Way, nodes map[int64]Node) (centroid place.Coord, shape *place.Shape, ok bool)
}

// OrbBoundaryBuilder builds rings with github.com/paulmach/orb by
// concatenating member "outer" ways in member order. It does not attempt
// ring-repair for disordered or reversed way fragments, the common case
// for well-formed administrative extracts.
type OrbBoundaryBuilder struct{}

func (OrbBoundaryBuilder) Build(rel Relation, ways map[int64]Way, nodes map[int64]Node) (place.Coord, *place.Shape, bool) {
	var ring orb.Ring
	for _, m := range rel.Members {
		if m.Type != MemberWay || m.Role != "outer" {
			continue
		}
		way, ok := ways[m.Ref]
		if !ok {
			continue
		}
		for _, nodeID := range way.NodeIDs {
			n, ok := nodes[nodeID]
			if !ok {
				continue
			}
			ring = append(ring, orb.Point{n.Lon, n.Lat})
		}
	}
	if len(ring) < 3 {
		return place.Coord{}, nil, false
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	poly := orb.Polygon{ring}
	centroid, area := planarCentroid(poly)
	if area == 0 {
		return place.Coord{}, nil, false
	}

	shape := &place.Shape{Type: "Polygon", Coordinates: poly}
	return place.Coord{Lon: centroid[0], Lat: centroid[1]}, shape, true
}

// planarCentroid returns the area-weighted centroid of poly's outer ring,
// using geo.Area for a great-circle-aware area estimate and the shoelace
// centroid formula for the location.
func planarCentroid(poly orb.Polygon) (orb.Point, float64) {
	ring := poly[0]
	var cx, cy, signedArea float64
	for i := 0; i < len(ring)-1; i++ {
		x0, y0 := ring[i][0], ring[i][1]
		x1, y1 := ring[i+1][0], ring[i+1][1]
		cross := x0*y1 - x1*y0
		signedArea += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	if signedArea == 0 {
		return orb.Point{}, 0
	}
	signedArea *= 0.5
	cx /= (6 * signedArea)
	cy /= (6 * signedArea)

	area := geo.Area(poly)
	return orb.Point{cx, cy}, area
}
