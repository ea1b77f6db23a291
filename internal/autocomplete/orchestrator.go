package autocomplete

import (
	"context"
	"time"

	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/metrics"
	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/planner"
	"github.com/geoplace/geocore/internal/query"
)

// Orchestrator drives the two-stage autocomplete strategy (§4.2, C2) on
// top of a Backend and the planner.
type Orchestrator struct {
	Backend  backend.Backend
	Settings *config.QuerySettings
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(b backend.Backend, settings *config.QuerySettings) *Orchestrator {
	return &Orchestrator{Backend: b, Settings: settings}
}

func validate(req config.UserRequest) error {
	if len(req.ZoneTypes) > 0 && !req.HasType("zone") {
		return InvalidParamError{Message: "zone_type[] requires type[]=zone"}
	}
	if len(req.PoiTypes) > 0 && !req.HasType("poi") {
		return InvalidParamError{Message: "poi_type[] requires type[]=poi"}
	}
	return nil
}

func searchParams(req config.UserRequest, indices []string, tree query.Query) backend.SearchParams {
	size := int(req.Limit)
	if size == 0 {
		size = 10
	}
	p := backend.SearchParams{
		Indices:        indices,
		Query:          tree,
		From:           int(req.Offset),
		Size:           size,
		SourceExcludes: []string{"boundary"},
		Explain:        req.Debug,
	}
	if req.Timeout != nil {
		p.Timeout = time.Duration(*req.Timeout) * time.Second
	}
	return p
}

// Autocomplete implements the C2 contract: autocomplete(request) ->
// Result<[Place], Error>. It validates the request, runs the planner in
// Prefix mode, and only falls back to Fuzzy when Prefix returns nothing
// (§4.2's two-stage strategy; §8's boundary behaviors: a non-empty Prefix
// result means Fuzzy never runs; an error from the first stage is
// terminal, per §7's propagation policy).
func (o *Orchestrator) Autocomplete(ctx context.Context, req config.UserRequest) ([]place.Place, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	indices := selectIndices(req)
	if len(indices) == 0 {
		return []place.Place{}, nil
	}

	prefixTree := planner.Plan(req, o.Settings, config.MatchPrefix)
	prefixParams := searchParams(req, indices, prefixTree)

	var result *backend.Result
	err := metrics.Time(metrics.SearchTypePrefix, func() error {
		var searchErr error
		result, searchErr = o.Backend.Search(ctx, prefixParams)
		return searchErr
	})
	if err != nil {
		return nil, BackendUnavailableError{Cause: err}
	}

	if len(result.Places) > 0 {
		return decorate(result.Places, req.Coord), nil
	}

	fuzzyTree := planner.Plan(req, o.Settings, config.MatchFuzzy)
	fuzzyParams := searchParams(req, indices, fuzzyTree)

	err = metrics.Time(metrics.SearchTypeFuzzy, func() error {
		var searchErr error
		result, searchErr = o.Backend.Search(ctx, fuzzyParams)
		return searchErr
	})
	if err != nil {
		return nil, BackendUnavailableError{Cause: err}
	}

	return decorate(result.Places, req.Coord), nil
}

// decorate attaches the distance decoration (§4.2): when a reference coord
// was supplied, each returned place gets distance = haversine(coord,
// place.coord) in meters, rounded to the nearest integer.
func decorate(places []place.Place, coord *place.Coord) []place.Place {
	if coord == nil {
		return places
	}
	out := make([]place.Place, len(places))
	for i, p := range places {
		d := int(Haversine(*coord, p.Coord) + 0.5)
		p.Distance = &d
		out[i] = p
	}
	return out
}
