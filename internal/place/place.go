// Package place defines the geographic document model shared by the
// planner, the autocomplete orchestrator and the OSM ingestion pipeline.
package place

import "fmt"

// Kind discriminates the Place tagged union. It is carried in the backend
// document's "type" field.
type Kind string

const (
	KindAddr   Kind = "addr"
	KindStreet Kind = "street"
	KindAdmin  Kind = "admin"
	KindPoi    Kind = "poi"
	KindStop   Kind = "stop"
)

// ZoneType enumerates the administrative zone kinds an Admin can carry.
type ZoneType string

const (
	ZoneNone         ZoneType = ""
	ZoneCity         ZoneType = "City"
	ZoneStateDistrict ZoneType = "StateDistrict"
	ZoneState        ZoneType = "State"
	ZoneCountry      ZoneType = "Country"
)

// Coord is an immutable WGS84 (lon, lat) pair.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the coordinate falls within the WGS84 domain.
func (c Coord) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Shape wraps a GeoJSON geometry used for the shape filter (§4.1) and for
// administrative boundaries. The geometry itself is opaque here; only its
// containment test is consumed by the ingestion side (RingGeofinder) and
// its raw form is forwarded verbatim to the backend on the query side.
type Shape struct {
	Type        string    `json:"type"`
	Coordinates any       `json:"coordinates,omitempty"`
	Geometries  []Shape   `json:"geometries,omitempty"`
}

// AdminRef is a weak, lookup-only reference to a containing administrative
// region: never an ownership edge, per the no-back-pointer rule in
// SPEC_FULL.md's design notes.
type AdminRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"admin_level"`
}

// Place is the tagged union indexed and returned by the search backend.
// Exactly one of Addr/Street/Admin/Poi/Stop-specific fields is meaningful
// for a given Kind; the common fields are always populated.
type Place struct {
	Kind Kind `json:"type"`

	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Weight float64 `json:"weight"`

	Coord       Coord  `json:"coord"`
	ApproxCoord *Coord `json:"approx_coord,omitempty"`

	ZipCodes      []string   `json:"zip_codes,omitempty"`
	CountryCodes  []string   `json:"country_codes,omitempty"`
	Admins        []AdminRef `json:"administrative_regions,omitempty"`

	// Distance, in meters, to the reference coord of the originating
	// request. Populated only after decoration (§4.2); absent otherwise.
	Distance *int `json:"distance,omitempty"`

	Names  map[string]string `json:"names,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`

	// Coverages carries the pt_dataset identifiers authorizing visibility
	// of transit-related documents (§4.1 dataset visibility filter). Nil
	// for non-transit objects.
	Coverages []string `json:"coverages,omitempty"`

	Admin  *Admin  `json:"admin,omitempty"`
	Street *Street `json:"street,omitempty"`

	HouseNumber string `json:"house_number,omitempty"`
}

// Admin carries the fields specific to administrative-region documents.
type Admin struct {
	Insee      string   `json:"insee,omitempty"`
	AdminLevel int      `json:"admin_level"`
	ZoneType   ZoneType `json:"zone_type,omitempty"`
	ZipCodes   []string `json:"zip_codes,omitempty"`
	Boundary   *Shape   `json:"boundary,omitempty"`
	BBox       *[4]float64 `json:"bbox,omitempty"`
	ParentID   string   `json:"parent_id,omitempty"`
}

// IsCity reports whether this admin was classified at the configured city
// level during ingestion (§4.4 step 2: zone_type = City iff admin_level ==
// city_level).
func (a *Admin) IsCity() bool {
	return a != nil && a.ZoneType == ZoneCity
}

// Street carries the fields specific to street documents.
type Street struct {
	Name         string     `json:"name"`
	Admins       []AdminRef `json:"administrative_regions,omitempty"`
	CountryCodes []string   `json:"country_codes,omitempty"`
	ZipCodes     []string   `json:"zip_codes,omitempty"`
}

// AdminID builds the scheme-prefixed id for an admin document. Per §4.4:
// prefer the INSEE scheme, fall back to the OSM relation scheme.
func AdminID(insee string, relID int64) string {
	if insee != "" {
		return fmt.Sprintf("admin:fr:%s", insee)
	}
	return fmt.Sprintf("admin:osm:relation:%d", relID)
}

// StreetRelationID builds a street id derived from an associatedStreet
// relation, per §4.5's "one document per admin chain" rule.
func StreetRelationID(relID int64, chainIndex, numChains int) string {
	if numChains <= 1 {
		return fmt.Sprintf("street:osm:relation:%d", relID)
	}
	return fmt.Sprintf("street:osm:relation:%d-%d", relID, chainIndex)
}

// StreetWayID builds a street id derived from a standalone way cluster.
func StreetWayID(wayID int64, chainIndex, numChains int) string {
	if numChains <= 1 {
		return fmt.Sprintf("street:osm:way:%d", wayID)
	}
	return fmt.Sprintf("street:osm:way:%d-%d", wayID, chainIndex)
}
