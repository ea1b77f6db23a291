// Package backend turns a query.Query plus an index list into search hits
// (§C7). Two executors are provided: a generic Elasticsearch-style HTTP
// executor (the production path) and a Meilisearch adapter built on the
// teacher's search dependency, for deployments without an Elasticsearch
// cluster.
package backend

import (
	"context"
	"time"

	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/query"
)

// SearchParams are the parameters shared by Search and Count.
type SearchParams struct {
	Indices        []string
	Query          query.Query
	From, Size     int
	SourceExcludes []string
	Timeout        time.Duration
	Explain        bool
}

// Result is what a Backend call returns: the decoded hits plus bookkeeping
// about anything the executor could not faithfully express.
type Result struct {
	Places []place.Place

	// Degraded lists clauses an executor could not translate (e.g.
	// Meilisearch dropping a FunctionScore it cannot express). Empty for
	// a fully faithful execution.
	Degraded []string

	Took time.Duration
}

// Backend executes a planned query against the search engine.
type Backend interface {
	Search(ctx context.Context, p SearchParams) (*Result, error)
	Count(ctx context.Context, p SearchParams) (int, error)
}

// BulkIndexer is implemented by executors that can write ingestion output
// (C4/C5) into the backend, in addition to serving queries (§5's streamed
// bulk indexing). Not every Backend needs it; cmd/ingest type-asserts for
// it and skips indexing against a backend that only supports reads.
type BulkIndexer interface {
	BulkIndex(ctx context.Context, index string, docs []place.Place) error
}
