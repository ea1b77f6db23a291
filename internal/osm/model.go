// Package osm implements the OSM ingestion pipeline: admin-region parsing
// (§4.4, C4) and street parsing (§4.5, C5). The on-disk PBF format itself
// is out of scope (§1's Non-goals) — this package consumes a streaming
// Source interface (get_objs_and_deps / get_objs_and_deps_store, §6) and a
// delegated BoundaryBuilder and Geofinder, matching the spec's boundary.
package osm

// MemberType discriminates an OSM relation member's referenced primitive.
type MemberType int

const (
	MemberNode MemberType = iota
	MemberWay
	MemberRelation
)

// Node is a minimal OSM node: an id, a coordinate and tags.
type Node struct {
	ID   int64
	Lon  float64
	Lat  float64
	Tags map[string]string
}

// Way is a minimal OSM way: an id, its ordered node references and tags.
type Way struct {
	ID      int64
	NodeIDs []int64
	Tags    map[string]string
}

// Member is one element of a relation's member list.
type Member struct {
	Type MemberType
	Ref  int64
	Role string
}

// Relation is a minimal OSM relation: an id, its members and tags.
type Relation struct {
	ID      int64
	Members []Member
	Tags    map[string]string
}

// Objects is the closure a Source returns for a predicate: the matched
// primitives plus everything transitively referenced by them.
type Objects struct {
	Nodes     map[int64]Node
	Ways      map[int64]Way
	Relations map[int64]Relation
}

// NewObjects returns an empty, ready-to-populate Objects value.
func NewObjects() Objects {
	return Objects{
		Nodes:     make(map[int64]Node),
		Ways:      make(map[int64]Way),
		Relations: make(map[int64]Relation),
	}
}
