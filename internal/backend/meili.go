package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	ms "github.com/meilisearch/meilisearch-go"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/query"
)

// MeiliExecutor adapts a query.Query tree to Meilisearch (the teacher's
// search dependency). Meilisearch cannot natively express an ES-style
// bool/function_score tree, so this executor lowers Term/Terms/Range/
// Exists filter clauses into a Meilisearch filter expression, flattens the
// must-side MultiMatch clauses into the free-text query string, and drops
// anything it cannot express (FunctionScore, should), recording what was
// dropped in Result.Degraded. This gives local/dev deployments a real,
// runnable backend without standing up an Elasticsearch cluster.
type MeiliExecutor struct {
	client    ms.ServiceManager
	indexName string
	timeout   time.Duration
	logger    *zap.Logger
}

// MeiliConfig configures the adapter.
type MeiliConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// NewMeiliExecutor builds a MeiliExecutor and verifies connectivity,
// mirroring the teacher's NewGazetteerSearcher health check.
func NewMeiliExecutor(cfg MeiliConfig, logger *zap.Logger) (*MeiliExecutor, error) {
	client := ms.New(cfg.Host, ms.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch: cannot connect: %w", err)
	}
	return &MeiliExecutor{
		client:    client,
		indexName: cfg.IndexName,
		timeout:   cfg.Timeout,
		logger:    logger,
	}, nil
}

// lowered is the intermediate form a query.Query tree translates to for
// Meilisearch: a free-text string plus a filter expression, plus whatever
// had to be dropped along the way.
type lowered struct {
	text     string
	filter   string
	degraded []string
}

// lowerQuery walks the top-level Bool planner.Plan produces (must/filter/
// should) and lowers it to Meilisearch's (q, filter) shape.
func lowerQuery(q query.Query) lowered {
	var out lowered
	b, ok := q.(query.Bool)
	if !ok {
		out.degraded = append(out.degraded, "top-level query was not a bool")
		return out
	}

	for _, m := range b.Must {
		if text := firstMatchText(m); text != "" && out.text == "" {
			out.text = text
		}
	}

	var clauses []string
	for _, f := range b.Filter {
		expr, ok, dropped := filterExpr(f)
		out.degraded = append(out.degraded, dropped...)
		if ok {
			clauses = append(clauses, expr)
		}
	}
	out.filter = strings.Join(clauses, " AND ")

	if len(b.Should) > 0 {
		out.degraded = append(out.degraded, fmt.Sprintf("dropped %d should (importance booster) clause(s): not expressible as a Meilisearch filter", len(b.Should)))
	}
	return out
}

// firstMatchText recursively finds the first MultiMatch/Match query text in
// a subtree. The planner repeats the same literal user query across every
// text clause, so any one of them carries the full free text.
func firstMatchText(q query.Query) string {
	switch v := q.(type) {
	case query.MultiMatch:
		return v.Query
	case query.Match:
		return v.Query
	case query.Bool:
		for _, inner := range [][]query.Query{v.Must, v.Should, v.Filter} {
			for _, c := range inner {
				if t := firstMatchText(c); t != "" {
					return t
				}
			}
		}
	case query.FunctionScore:
		if v.Query != nil {
			return firstMatchText(v.Query)
		}
	}
	return ""
}

// filterExpr lowers a single filter-side clause to a Meilisearch filter
// expression. ok is false when the clause cannot be expressed at all (it
// is then reported via dropped instead).
func filterExpr(q query.Query) (expr string, ok bool, dropped []string) {
	switch v := q.(type) {
	case query.Term:
		return fmt.Sprintf("%s = %q", v.Field, fmt.Sprint(v.Value)), true, nil
	case query.Terms:
		parts := make([]string, len(v.Values))
		for i, val := range v.Values {
			parts[i] = fmt.Sprintf("%s = %q", v.Field, fmt.Sprint(val))
		}
		return "(" + strings.Join(parts, " OR ") + ")", true, nil
	case query.Exists:
		return fmt.Sprintf("%s EXISTS", v.Field), true, nil
	case query.Range:
		var parts []string
		if v.Gte != nil {
			parts = append(parts, fmt.Sprintf("%s >= %v", v.Field, v.Gte))
		}
		if v.Lte != nil {
			parts = append(parts, fmt.Sprintf("%s <= %v", v.Field, v.Lte))
		}
		if len(parts) == 0 {
			return "", false, nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", true, nil
	case query.Bool:
		return lowerFilterBool(v)
	case query.Ids:
		parts := make([]string, len(v.Values))
		for i, id := range v.Values {
			parts[i] = fmt.Sprintf("id = %q", id)
		}
		return "(" + strings.Join(parts, " OR ") + ")", true, nil
	default:
		return "", false, []string{fmt.Sprintf("dropped unsupported filter clause %T", q)}
	}
}

func lowerFilterBool(b query.Bool) (string, bool, []string) {
	var dropped []string
	var parts []string

	for _, c := range append(append([]query.Query{}, b.Must...), b.Filter...) {
		expr, ok, d := filterExpr(c)
		dropped = append(dropped, d...)
		if ok {
			parts = append(parts, expr)
		}
	}
	andExpr := strings.Join(parts, " AND ")

	var orParts []string
	for _, c := range b.Should {
		expr, ok, d := filterExpr(c)
		dropped = append(dropped, d...)
		if ok {
			orParts = append(orParts, expr)
		}
	}
	orExpr := ""
	if len(orParts) > 0 {
		orExpr = "(" + strings.Join(orParts, " OR ") + ")"
	}

	var notParts []string
	for _, c := range b.MustNot {
		expr, ok, d := filterExpr(c)
		dropped = append(dropped, d...)
		if ok {
			notParts = append(notParts, "NOT "+expr)
		}
	}
	notExpr := strings.Join(notParts, " AND ")

	var all []string
	for _, e := range []string{andExpr, orExpr, notExpr} {
		if e != "" {
			all = append(all, e)
		}
	}
	if len(all) == 0 {
		return "", false, dropped
	}
	return "(" + strings.Join(all, " AND ") + ")", true, dropped
}

// rescore recomputes a comparable relevance score for a Meilisearch hit
// combining Jaro-Winkler similarity and normalized Levenshtein distance
// against the query text, since Meilisearch's internal ranking does not
// expose a float comparable to an ES _score across executors.
func rescore(queryText, label string) float64 {
	if queryText == "" || label == "" {
		return 0
	}
	q := strings.ToLower(queryText)
	l := strings.ToLower(label)

	jw := smetrics.JaroWinkler(q, l, 0.7, 4)

	dist := levenshtein.ComputeDistance(q, l)
	maxLen := len(q)
	if len(l) > maxLen {
		maxLen = len(l)
	}
	levSim := 1.0
	if maxLen > 0 {
		levSim = 1.0 - float64(dist)/float64(maxLen)
	}

	return 0.6*jw + 0.4*levSim
}

// Search implements Backend.
func (m *MeiliExecutor) Search(ctx context.Context, p SearchParams) (*Result, error) {
	lq := lowerQuery(p.Query)

	index := m.client.Index(m.indexName)
	req := &ms.SearchRequest{
		Limit:  int64(p.Size),
		Offset: int64(p.From),
		Filter: lq.filter,
	}

	resp, err := index.SearchWithContext(ctx, lq.text, req)
	if err != nil {
		return nil, fmt.Errorf("meilisearch: search failed: %w", err)
	}

	places := make([]place.Place, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		p, ok := placeFromMeiliHit(hitMap)
		if !ok {
			continue
		}
		p.Weight = rescore(lq.text, p.Label)
		places = append(places, p)
	}

	return &Result{Places: places, Degraded: lq.degraded}, nil
}

// Count implements Backend.
func (m *MeiliExecutor) Count(ctx context.Context, p SearchParams) (int, error) {
	lq := lowerQuery(p.Query)
	index := m.client.Index(m.indexName)
	resp, err := index.SearchWithContext(ctx, lq.text, &ms.SearchRequest{
		Filter: lq.filter,
		Limit:  1,
	})
	if err != nil {
		return 0, fmt.Errorf("meilisearch: count failed: %w", err)
	}
	return int(resp.EstimatedTotalHits), nil
}

func placeFromMeiliHit(hit map[string]interface{}) (place.Place, bool) {
	var p place.Place

	typ, _ := hit["type"].(string)
	switch place.Kind(typ) {
	case place.KindAddr, place.KindStreet, place.KindAdmin, place.KindPoi, place.KindStop:
		p.Kind = place.Kind(typ)
	default:
		return p, false
	}

	if id, ok := hit["id"].(string); ok {
		p.ID = id
	}
	if name, ok := hit["name"].(string); ok {
		p.Name = name
	}
	if label, ok := hit["label"].(string); ok {
		p.Label = label
	}
	if weight, ok := hit["weight"].(float64); ok {
		p.Weight = weight
	}
	if lon, ok := hit["lon"].(float64); ok {
		p.Coord.Lon = lon
	}
	if lat, ok := hit["lat"].(float64); ok {
		p.Coord.Lat = lat
	}
	if hn, ok := hit["house_number"].(string); ok {
		p.HouseNumber = hn
	}
	return p, true
}
