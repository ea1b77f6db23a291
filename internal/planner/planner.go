package planner

import (
	"encoding/json"

	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/query"
)

// entityTypes lists the five type-prior clauses from §4.1's type-prior
// disjunction, in a fixed order so the emitted query is deterministic.
var entityTypes = []string{"addr", "admin", "stop", "poi", "street"}

func typeBoost(boosts config.TypeQueryBoosts, t string) float64 {
	switch t {
	case "addr":
		return boosts.Address
	case "admin":
		return boosts.Admin
	case "stop":
		return boosts.Stop
	case "poi":
		return boosts.Poi
	case "street":
		return boosts.Street
	default:
		return 0
	}
}

func typeWeight(w config.TypeWeights, t string) float64 {
	switch t {
	case "addr":
		return w.Address
	case "admin":
		return w.Admin
	case "stop":
		return w.Stop
	case "poi":
		return w.Poi
	case "street":
		return w.Street
	default:
		return 0
	}
}

// typePriorQuery builds the type-prior disjunction: a per-type term match
// each with its configured boost, wrapped with type_query.global (§4.1).
func typePriorQuery(settings *config.QuerySettings) query.Query {
	should := make([]query.Query, 0, len(entityTypes))
	for _, t := range entityTypes {
		should = append(should, query.Term{
			Field: "type",
			Value: t,
			Boost: typeBoost(settings.TypeQuery.Boosts, t),
		})
	}
	inner := query.Bool{Should: should}
	global := settings.TypeQuery.Global
	return query.FunctionScore{
		Query:     inner,
		Functions: []query.ScoreFunction{{Weight: query.Weight(global)}},
		BoostMode: "multiply",
	}
}

// stringQueryDisjunction builds the text-relevance should-clauses of
// §4.1's string-query disjunction, wrapped with string_query.global.
func stringQueryDisjunction(req config.UserRequest, settings *config.QuerySettings, mode config.MatchMode) query.Query {
	b := settings.StringQuery.Boosts
	var should []query.Query

	should = append(should, query.MultiMatch{
		Query:  req.Q,
		Fields: localizedNameFields("name", "names", req.Langs, b.Name, ""),
		Type:   "best_fields",
	})
	should = append(should, query.MultiMatch{
		Query:  req.Q,
		Fields: localizedNameFields("label", "labels", req.Langs, b.Label, ""),
		Type:   "best_fields",
	})
	should = append(should, query.MultiMatch{
		Query:  req.Q,
		Fields: localizedNameFields("label", "labels", req.Langs, b.LabelPrefix, ".prefix"),
		Type:   "best_fields",
	})
	should = append(should, query.Match{Field: "zip_codes", Query: req.Q, Boost: b.ZipCodes})
	should = append(should, query.Match{Field: "house_number", Query: req.Q, Boost: b.HouseNumber})

	if mode == config.MatchFuzzy {
		ngramBoost := b.LabelNgram
		if req.HasCoord() {
			ngramBoost = b.LabelNgramWithCoord
		}
		should = append(should, query.MultiMatch{
			Query:  req.Q,
			Fields: localizedNameFields("label", "labels", req.Langs, ngramBoost, ".ngram"),
			Type:   "best_fields",
		})
	}

	inner := query.Bool{Should: should}
	return query.FunctionScore{
		Query:     inner,
		Functions: []query.ScoreFunction{{Weight: query.Weight(settings.StringQuery.Global)}},
		BoostMode: "multiply",
	}
}

func localizedNameFields(baseField, localizedPrefix string, langs []string, boost float64, suffix string) []query.FieldBoost {
	fields := []query.FieldBoost{{Field: baseField + suffix, Boost: boost}}
	for _, lang := range langs {
		fields = append(fields, query.FieldBoost{Field: localizedPrefix + "." + lang + suffix, Boost: boost})
	}
	return fields
}

// matchingFilter builds the hard matching-strategy filter (§4.1): a Prefix
// AND-match on full_label.prefix, or a Fuzzy ngram match tolerating
// misspellings via a configured minimum_should_match.
func matchingFilter(req config.UserRequest, settings *config.QuerySettings, mode config.MatchMode) query.Query {
	if mode == config.MatchPrefix {
		return query.MultiMatch{
			Query:    req.Q,
			Fields:   []query.FieldBoost{{Field: "full_label.prefix"}},
			Type:     "best_fields",
			Operator: "and",
		}
	}
	return query.MultiMatch{
		Query:              req.Q,
		Fields:             []query.FieldBoost{{Field: "full_label.ngram"}},
		Type:               "best_fields",
		MinimumShouldMatch: settings.FuzzyMinShouldMatch,
	}
}

// houseNumberFilter implements §4.1's rule: multi-token queries accept
// either no house_number or an exact match; single-token queries require
// absence of house_number (a lone token is never a house number search).
func houseNumberFilter(req config.UserRequest) query.Query {
	noHouseNumber := query.Bool{MustNot: []query.Query{query.Exists{Field: "house_number"}}}
	if len(req.Tokens()) <= 1 {
		return noHouseNumber
	}
	return query.Bool{
		Should: []query.Query{
			noHouseNumber,
			query.Term{Field: "house_number", Value: req.Q},
		},
	}
}

// datasetVisibilityFilter implements §4.1's coverage rule: when all_data
// is false, require absence of coverages (non-transit objects) or an
// intersection with pt_datasets. Per invariant #6, all_data=true omits
// this filter entirely.
func datasetVisibilityFilter(req config.UserRequest) query.Query {
	if req.AllData {
		return nil
	}
	noCoverage := query.Bool{MustNot: []query.Query{query.Exists{Field: "coverages"}}}
	clauses := []query.Query{noCoverage}
	if len(req.PtDatasets) > 0 {
		values := make([]any, len(req.PtDatasets))
		for i, d := range req.PtDatasets {
			values[i] = d
		}
		clauses = append(clauses, query.Terms{Field: "coverages", Values: values})
	}
	return query.Bool{Should: clauses}
}

// shapeFilter implements §4.1's geographic shape filter: documents whose
// coord lies inside shape, excluding Stop-typed documents (stops remain
// visible outside the shape regardless of geometry).
func shapeFilter(req config.UserRequest) query.Query {
	if req.Shape == nil {
		return nil
	}
	inShape := query.Bool{
		Filter: []query.Query{geoShapeClause(req.Shape)},
	}
	return query.Bool{
		Should: []query.Query{
			inShape,
			query.Term{Field: "type", Value: "stop"},
		},
	}
}

func geoShapeClause(shape *place.Shape) query.Query {
	return geoShapeQuery{shape: shape}
}

type geoShapeQuery struct {
	shape *place.Shape
}

func (geoShapeQuery) isQuery() {}

func (g geoShapeQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"geo_shape": map[string]any{
			"coord": map[string]any{
				"shape":    g.shape,
				"relation": "within",
			},
		},
	})
}

// buildTypeWeightedFunctionScore builds §4.1.1's type-weighted importance booster:
// a per-type field_value_factor(weight, factor, missing) multiplied by a
// type weight, boost_mode=replace, using the BuildWeight blended by the
// zoom ratio.
func buildTypeWeightedFunctionScore(blend config.BuildWeight, types config.TypeWeights) query.Query {
	funcs := make([]query.ScoreFunction, 0, len(entityTypes))
	for _, t := range entityTypes {
		tw := typeWeight(types, t)
		funcs = append(funcs, query.ScoreFunction{
			Filter: query.Term{Field: "type", Value: t},
			FieldValueFactor: &query.FieldValueFactor{
				Field:    "weight",
				Factor:   blend.Factor * tw,
				Missing:  blend.Missing,
				Modifier: "none",
			},
		})
	}
	return query.FunctionScore{Functions: funcs, BoostMode: "replace"}
}

// proximityDecayBooster implements §4.1.2: Gaussian decay centered on the
// request coord, combined with a constant weight (weight_fuzzy if fuzzy
// else weight) via boost_mode=replace. Only built when a coord is present.
func proximityDecayBooster(req config.UserRequest, mode config.MatchMode, settings *config.QuerySettings) query.Query {
	if !req.HasCoord() {
		return nil
	}
	curve := settings.ImportanceQuery.Proximity.Gaussian
	weight := settings.ImportanceQuery.Proximity.Weight
	if mode == config.MatchFuzzy {
		weight = settings.ImportanceQuery.Proximity.WeightFuzzy
	}
	return query.FunctionScore{
		Functions: []query.ScoreFunction{
			{
				Gauss: &query.GaussDecay{
					Field:    "coord",
					Origin:   *req.Coord,
					ScaleKm:  curve.ScaleKm,
					OffsetKm: curve.OffsetKm,
					Decay:    curve.Decay,
				},
				Weight: query.Weight(weight),
			},
		},
		BoostMode: "replace",
	}
}

// prefixOnlyAdminBump implements §4.1.3: only in Prefix mode, boost admin
// documents by log1p(weight * 1e6) so matching admin names surface over
// streets sharing the same prefix. Scoped by an outer type:admin query, the
// same way the original's admin-boost clause restricts this function_score
// to admin documents rather than relying solely on the function's own
// filter.
func prefixOnlyAdminBump(mode config.MatchMode) query.Query {
	if mode != config.MatchPrefix {
		return nil
	}
	return query.FunctionScore{
		Query: query.Term{Field: "type", Value: "admin"},
		Functions: []query.ScoreFunction{
			{
				Filter: query.Term{Field: "type", Value: "admin"},
				FieldValueFactor: &query.FieldValueFactor{
					Field:    "weight",
					Factor:   1e6,
					Modifier: "log1p",
				},
			},
		},
		BoostMode: "replace",
	}
}

// Plan is the query planner's contract (§4.1): plan(request, settings,
// match_mode) -> QueryTree. It is a pure function: the same inputs always
// produce the same tree, and it never fails (§4.1's Errors note).
func Plan(req config.UserRequest, settings *config.QuerySettings, mode config.MatchMode) query.Query {
	must := []query.Query{
		typePriorQuery(settings),
		stringQueryDisjunction(req, settings, mode),
	}

	filter := []query.Query{
		houseNumberFilter(req),
		matchingFilter(req, settings, mode),
	}
	if vis := datasetVisibilityFilter(req); vis != nil {
		filter = append(filter, vis)
	}
	if shape := shapeFilter(req); shape != nil {
		filter = append(filter, shape)
	}

	should := []query.Query{typeWeightedImportanceZoomed(req, mode, settings)}
	if prox := proximityDecayBooster(req, mode, settings); prox != nil {
		should = append(should, prox)
	}
	if bump := prefixOnlyAdminBump(mode); bump != nil {
		should = append(should, bump)
	}

	return query.Bool{Must: must, Filter: filter, Should: should}
}

// typeWeightedImportanceZoomed calls buildTypeWeightedFunctionScore with
// the BuildWeight blended by the zoom ratio of the actual request coord (or
// its absence), per §4.1's zoom-ratio pseudocode.
func typeWeightedImportanceZoomed(req config.UserRequest, mode config.MatchMode, settings *config.QuerySettings) query.Query {
	w := settings.ImportanceQuery.Weights
	zr := ZoomRatio(req.Coord, settings.ImportanceQuery.Proximity.Gaussian, w.RadiusRange)
	blend := BlendWeights(zr, MinWeightsFor(mode, w), w.MaxRadius)
	return buildTypeWeightedFunctionScore(blend, w.Types)
}
