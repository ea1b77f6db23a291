package autocomplete

import (
	"context"
	"time"

	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/metrics"
	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/query"
)

// Feature implements the C3 contract (§4.3): feature(id, pt_datasets,
// all_data) -> Result<[Place], ObjectNotFound>. It searches every index
// (the exact index an id lives in is unknown ahead of time) with an
// id-term filter and, unless all_data, the same dataset-visibility clause
// as C1. No scoring is involved.
func (o *Orchestrator) Feature(ctx context.Context, id string, ptDatasets []string, allData bool) ([]place.Place, error) {
	filter := []query.Query{query.Ids{Values: []string{id}}}
	if !allData {
		noCoverage := query.Bool{MustNot: []query.Query{query.Exists{Field: "coverages"}}}
		clauses := []query.Query{noCoverage}
		if len(ptDatasets) > 0 {
			values := make([]any, len(ptDatasets))
			for i, d := range ptDatasets {
				values[i] = d
			}
			clauses = append(clauses, query.Terms{Field: "coverages", Values: values})
		}
		filter = append(filter, query.Bool{Should: clauses})
	}

	tree := query.Bool{Filter: filter}
	params := backend.SearchParams{
		Indices:        allIndices(),
		Query:          tree,
		From:           0,
		Size:           1,
		SourceExcludes: []string{"boundary"},
		Timeout:        5 * time.Second,
	}

	var result *backend.Result
	err := metrics.Time(metrics.SearchTypeFeatures, func() error {
		var searchErr error
		result, searchErr = o.Backend.Search(ctx, params)
		return searchErr
	})
	if err != nil {
		return nil, BackendUnavailableError{Cause: err}
	}

	if len(result.Places) == 0 {
		return nil, ObjectNotFoundError{ID: id}
	}
	return result.Places, nil
}

func allIndices() []string {
	indices := make([]string, len(allTypes))
	for i, t := range allTypes {
		indices[i] = indexForType(t)
	}
	return indices
}
