package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/place"
)

// ESConfig configures the generic Elasticsearch-style HTTP executor. URL
// is never a compiled-in literal (§9's open question): it must always come
// from internal/config.
type ESConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// ESExecutor is the production Backend: it POSTs the marshaled query.Query
// to a configurable endpoint and decodes the resulting hit array,
// dispatching each document by its type discriminator (§9).
type ESExecutor struct {
	cfg    ESConfig
	client *http.Client
	logger *zap.Logger
}

// NewESExecutor builds an ESExecutor. cfg.URL is required; callers get it
// from internal/config, never from a literal.
func NewESExecutor(cfg ESConfig, logger *zap.Logger) (*ESExecutor, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("backend: URL is required")
	}
	return &ESExecutor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type esRequestBody struct {
	Query             any      `json:"query"`
	From              int      `json:"from"`
	Size              int      `json:"size"`
	SourceExcludes    []string `json:"_source,omitempty"`
	IgnoreUnavailable bool     `json:"-"`
	Explain           bool     `json:"explain,omitempty"`
	TrackTotalHits    bool     `json:"track_total_hits"`
}

// MarshalJSON renders _source as the exclusion-object shape ES expects
// ({"excludes": [...]}) rather than a bare field list, since this executor
// only ever excludes fields (§6: "Source excludes default to [boundary]").
func (b esRequestBody) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"query":            b.Query,
		"from":             b.From,
		"size":             b.Size,
		"track_total_hits": b.TrackTotalHits,
	}
	if len(b.SourceExcludes) > 0 {
		body["_source"] = map[string]any{"excludes": b.SourceExcludes}
	}
	if b.Explain {
		body["explain"] = true
	}
	return json.Marshal(body)
}

type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ESExecutor) endpoint(indices []string, path string) string {
	idx := strings.Join(indices, ",")
	return strings.TrimRight(e.cfg.URL, "/") + "/" + idx + "/" + path + "?ignore_unavailable=true"
}

func (e *ESExecutor) do(ctx context.Context, p SearchParams, path string) (*esSearchResponse, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	body := esRequestBody{
		Query:          p.Query,
		From:           p.From,
		Size:           p.Size,
		SourceExcludes: p.SourceExcludes,
		Explain:        p.Explain,
		TrackTotalHits: true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("backend: encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(p.Indices, path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("backend: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "ApiKey "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("backend: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed esSearchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("backend: decoding response: %w", err)
	}
	return &parsed, nil
}

// Search implements Backend.
func (e *ESExecutor) Search(ctx context.Context, p SearchParams) (*Result, error) {
	resp, err := e.do(ctx, p, "_search")
	if err != nil {
		return nil, err
	}

	raw := make([]json.RawMessage, len(resp.Hits.Hits))
	for i, h := range resp.Hits.Hits {
		raw[i] = h.Source
	}
	places, skipped := decodeHits(raw)
	if len(skipped) > 0 && e.logger != nil {
		e.logger.Warn("backend: dropped undecodable hits", zap.Int("count", len(skipped)))
	}

	return &Result{
		Places:   places,
		Degraded: skipped,
		Took:     time.Duration(resp.Took) * time.Millisecond,
	}, nil
}

// Count implements Backend. It runs a zero-size search and reads the
// tracked total rather than ES's separate _count endpoint, which does not
// report the same total-hits semantics once a function_score is involved.
func (e *ESExecutor) Count(ctx context.Context, p SearchParams) (int, error) {
	p.Size = 0
	resp, err := e.do(ctx, p, "_search")
	if err != nil {
		return 0, err
	}
	return resp.Hits.Total.Value, nil
}

// BulkIndex implements BulkIndexer via ES's newline-delimited _bulk API: one
// action line plus one source line per document, submitted as a single
// request per batch (§5's streamed bulk indexing).
func (e *ESExecutor) BulkIndex(ctx context.Context, index string, docs []place.Place) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range docs {
		action := map[string]any{"index": map[string]any{"_index": index, "_id": docs[i].ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("backend: encoding bulk action: %w", err)
		}
		if err := enc.Encode(docs[i]); err != nil {
			return fmt.Errorf("backend: encoding bulk document: %w", err)
		}
	}

	url := strings.TrimRight(e.cfg.URL, "/") + "/_bulk"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("backend: building bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "ApiKey "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: bulk request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: reading bulk response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend: bulk status %d: %s", resp.StatusCode, string(data))
	}

	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("backend: decoding bulk response: %w", err)
	}
	if parsed.Errors {
		return fmt.Errorf("backend: bulk indexing reported item-level errors")
	}
	return nil
}
