// Package query implements the typed query-tree algebra described in
// SPEC_FULL.md §C6: a Go sum type standing in for the backend's tree-shaped
// wire JSON, so the planner's invariants (§4.1) are structurally enforced
// instead of stringly-typed. Each node implements json.Marshaler to
// produce the Elasticsearch-compatible wire shape.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/geoplace/geocore/internal/place"
)

// Query is the sum type. Every node type below implements it.
type Query interface {
	isQuery()
	json.Marshaler
}

// Bool is the boolean compound query: must/should/filter/must_not.
// MarshalJSON omits empty clause slices rather than emitting "[]", matching
// how real ES clients trim boolean queries (SPEC_FULL.md §C6).
type Bool struct {
	Must    []Query
	Should  []Query
	Filter  []Query
	MustNot []Query
}

func (Bool) isQuery() {}

func (b Bool) MarshalJSON() ([]byte, error) {
	inner := map[string]any{}
	if len(b.Must) > 0 {
		inner["must"] = b.Must
	}
	if len(b.Should) > 0 {
		inner["should"] = b.Should
	}
	if len(b.Filter) > 0 {
		inner["filter"] = b.Filter
	}
	if len(b.MustNot) > 0 {
		inner["must_not"] = b.MustNot
	}
	return json.Marshal(map[string]any{"bool": inner})
}

// Term is a single-value exact match, with an optional boost.
type Term struct {
	Field string
	Value any
	Boost float64
}

func (Term) isQuery() {}

func (t Term) MarshalJSON() ([]byte, error) {
	body := map[string]any{"value": t.Value}
	if t.Boost != 0 {
		body["boost"] = t.Boost
	}
	return json.Marshal(map[string]any{"term": map[string]any{t.Field: body}})
}

// Terms is a multi-value exact match (document matches if any value hits).
type Terms struct {
	Field  string
	Values []any
}

func (Terms) isQuery() {}

func (t Terms) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"terms": map[string]any{t.Field: t.Values}})
}

// Exists matches documents where Field is present, non-null.
type Exists struct{ Field string }

func (Exists) isQuery() {}

func (e Exists) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"exists": map[string]any{"field": e.Field}})
}

// Ids matches documents by id, used by the feature-lookup filter (§4.3).
type Ids struct{ Values []string }

func (Ids) isQuery() {}

func (i Ids) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"ids": map[string]any{"values": i.Values}})
}

// Range is an inclusive numeric/date range filter.
type Range struct {
	Field    string
	Gte, Lte any
}

func (Range) isQuery() {}

func (r Range) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if r.Gte != nil {
		body["gte"] = r.Gte
	}
	if r.Lte != nil {
		body["lte"] = r.Lte
	}
	return json.Marshal(map[string]any{"range": map[string]any{r.Field: body}})
}

// Match is a single-field analyzed text match.
type Match struct {
	Field string
	Query string
	Boost float64
}

func (Match) isQuery() {}

func (m Match) MarshalJSON() ([]byte, error) {
	body := map[string]any{"query": m.Query}
	if m.Boost != 0 {
		body["boost"] = m.Boost
	}
	return json.Marshal(map[string]any{"match": map[string]any{m.Field: body}})
}

// MultiMatch is a multi-field analyzed text match. Fields are encoded at
// marshal time as "field^boost" the way a real ES client renders them.
type MultiMatch struct {
	Query               string
	Fields              []FieldBoost
	Type                string // "best_fields", "phrase_prefix", ...
	Operator            string // "and" | "or"
	MinimumShouldMatch  string // e.g. "80%", only set when meaningful
}

// FieldBoost pairs a field name with its boost factor.
type FieldBoost struct {
	Field string
	Boost float64
}

func (f FieldBoost) String() string {
	if f.Boost == 0 {
		return f.Field
	}
	return fmt.Sprintf("%s^%g", f.Field, f.Boost)
}

func (MultiMatch) isQuery() {}

func (m MultiMatch) MarshalJSON() ([]byte, error) {
	fields := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		fields[i] = f.String()
	}
	body := map[string]any{
		"query":  m.Query,
		"fields": fields,
	}
	if m.Type != "" {
		body["type"] = m.Type
	}
	if m.Operator != "" {
		body["operator"] = m.Operator
	}
	if m.MinimumShouldMatch != "" {
		body["minimum_should_match"] = m.MinimumShouldMatch
	}
	return json.Marshal(map[string]any{"multi_match": body})
}

// MatchNone is a match_none clause that matches no document. The planner
// does not build one, and Bool's JSON encoding keeps it like any other
// clause (only empty clause slices are omitted).
type MatchNone struct{}

func (MatchNone) isQuery() {}

func (MatchNone) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"match_none": map[string]any{}})
}

// FieldValueFactor scales score by a document field value.
type FieldValueFactor struct {
	Field    string
	Factor   float64
	Missing  float64
	Modifier string // "none", "log1p", "ln1p", ...
}

func (f FieldValueFactor) marshal() map[string]any {
	body := map[string]any{"field": f.Field}
	if f.Factor != 0 {
		body["factor"] = f.Factor
	}
	if f.Modifier != "" {
		body["modifier"] = f.Modifier
	}
	if f.Missing != 0 {
		body["missing"] = f.Missing
	}
	return body
}

// GaussDecay is a Gaussian decay function centered on a geo-point origin.
type GaussDecay struct {
	Field    string
	Origin   place.Coord
	ScaleKm  float64
	OffsetKm float64
	Decay    float64
}

func (g GaussDecay) marshal() map[string]any {
	return map[string]any{
		g.Field: map[string]any{
			"origin": map[string]any{"lon": g.Origin.Lon, "lat": g.Origin.Lat},
			"scale":  fmt.Sprintf("%gkm", g.ScaleKm),
			"offset": fmt.Sprintf("%gkm", g.OffsetKm),
			"decay":  g.Decay,
		},
	}
}

// ScoreFunction is one entry in a FunctionScore's function list.
type ScoreFunction struct {
	Filter           Query // nil = applies to all matches
	FieldValueFactor *FieldValueFactor
	Gauss            *GaussDecay
	Weight           *float64
}

func (s ScoreFunction) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if s.Filter != nil {
		body["filter"] = s.Filter
	}
	if s.FieldValueFactor != nil {
		body["field_value_factor"] = s.FieldValueFactor.marshal()
	}
	if s.Gauss != nil {
		body["gauss"] = s.Gauss.marshal()
	}
	if s.Weight != nil {
		body["weight"] = *s.Weight
	}
	return json.Marshal(body)
}

// FunctionScore wraps a query, rescoring its matches via Functions.
type FunctionScore struct {
	Query     Query
	Functions []ScoreFunction
	BoostMode string // "replace" | "multiply" | "sum" | ...
}

func (FunctionScore) isQuery() {}

func (f FunctionScore) MarshalJSON() ([]byte, error) {
	body := map[string]any{"functions": f.Functions}
	if f.Query != nil {
		body["query"] = f.Query
	}
	if f.BoostMode != "" {
		body["boost_mode"] = f.BoostMode
	} else {
		body["boost_mode"] = "multiply"
	}
	return json.Marshal(map[string]any{"function_score": body})
}

// Weight attaches a constant-factor boost independent of any field,
// typically used to blend "weight" vs "weight_fuzzy" constants (§4.1.2).
func Weight(w float64) *float64 { return &w }
