package config

import "github.com/geoplace/geocore/internal/place"

// MatchMode selects the planner's matching strategy (§4.1).
type MatchMode string

const (
	MatchPrefix MatchMode = "prefix"
	MatchFuzzy  MatchMode = "fuzzy"
)

// UserRequest is the full set of inputs to the autocomplete orchestrator
// (§3, §6). Fields left zero-valued take their documented defaults
// (Offset=0, Limit=10).
type UserRequest struct {
	Q     string
	Coord *place.Coord
	Shape *place.Shape

	Offset uint
	Limit  uint

	Langs []string

	PtDatasets  []string
	PoiDatasets []string
	AllData     bool

	Types     []string
	ZoneTypes []string
	PoiTypes  []string

	Debug   bool
	Timeout *uint // seconds, as carried over the wire (§6)
}

// HasCoord reports whether the request carries a reference coordinate.
func (r UserRequest) HasCoord() bool { return r.Coord != nil }

// Tokens splits Q on whitespace. A single-token query is never a house
// number search (§4.1's house-number filter).
func (r UserRequest) Tokens() []string {
	return splitFields(r.Q)
}

func splitFields(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// HasType reports whether t is present among the requested entity types.
func (r UserRequest) HasType(t string) bool {
	for _, x := range r.Types {
		if x == t {
			return true
		}
	}
	return false
}
