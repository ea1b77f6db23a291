package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
	"github.com/geoplace/geocore/internal/query"
)

func settings() *config.QuerySettings {
	s := config.DefaultQuerySettings()
	return &s
}

func stringDisjunctionShould(t *testing.T, tree query.Query) []query.Query {
	t.Helper()
	b, ok := tree.(query.Bool)
	require.True(t, ok, "top-level tree must be a Bool")
	require.GreaterOrEqual(t, len(b.Must), 2)
	fs, ok := b.Must[1].(query.FunctionScore)
	require.True(t, ok, "second must clause is the string-query disjunction")
	inner, ok := fs.Query.(query.Bool)
	require.True(t, ok)
	return inner.Should
}

// Invariant 1: both modes produce a Bool with exactly the must/filter/should
// slots (MustNot unused by the planner itself).
func TestPlan_OuterShapeHasMustFilterShould(t *testing.T) {
	req := config.UserRequest{Q: "paris"}
	for _, mode := range []config.MatchMode{config.MatchPrefix, config.MatchFuzzy} {
		tree := Plan(req, settings(), mode)
		b, ok := tree.(query.Bool)
		require.True(t, ok)
		assert.NotEmpty(t, b.Must)
		assert.NotEmpty(t, b.Filter)
		assert.NotEmpty(t, b.Should)
	}
}

// Invariant 2: Fuzzy's string-query disjunction has exactly one more clause
// than Prefix's, for the same request: the label.ngram clause.
func TestPlan_FuzzyHasOneMoreStringClauseThanPrefix(t *testing.T) {
	req := config.UserRequest{Q: "paris"}
	prefixShould := stringDisjunctionShould(t, Plan(req, settings(), config.MatchPrefix))
	fuzzyShould := stringDisjunctionShould(t, Plan(req, settings(), config.MatchFuzzy))

	assert.Equal(t, len(prefixShould)+1, len(fuzzyShould))
}

// Invariant 3: with coord=None, zoom_ratio == 1.0 and weights == max_weights
// exactly.
func TestPlan_NoCoordUsesMaxWeightsExactly(t *testing.T) {
	w := settings().ImportanceQuery.Weights
	zr := ZoomRatio(nil, settings().ImportanceQuery.Proximity.Gaussian, w.RadiusRange)
	assert.Equal(t, 1.0, zr)

	blend := BlendWeights(zr, MinWeightsFor(config.MatchPrefix, w), w.MaxRadius)
	assert.Equal(t, w.MaxRadius, blend)
}

// Invariant 4: with coord=Some(_), zoom_ratio is in [0,1].
func TestPlan_WithCoordZoomRatioInUnitRange(t *testing.T) {
	w := settings().ImportanceQuery.Weights
	curve := settings().ImportanceQuery.Proximity.Gaussian
	coords := []place.Coord{
		{Lon: 2.35, Lat: 48.85},
		{Lon: 0, Lat: 0},
		{Lon: 179, Lat: -70},
	}
	for _, c := range coords {
		zr := ZoomRatio(&c, curve, w.RadiusRange)
		assert.GreaterOrEqual(t, zr, 0.0)
		assert.LessOrEqual(t, zr, 1.0)
	}
}

// Invariant 5: for any q containing no whitespace, the planner filter
// contains a must-not on house_number existence.
func TestPlan_SingleTokenQueryForbidsHouseNumber(t *testing.T) {
	req := config.UserRequest{Q: "paris"}
	tree := Plan(req, settings(), config.MatchPrefix).(query.Bool)

	hn, ok := tree.Filter[0].(query.Bool)
	require.True(t, ok)
	require.Len(t, hn.MustNot, 1)
	exists, ok := hn.MustNot[0].(query.Exists)
	require.True(t, ok)
	assert.Equal(t, "house_number", exists.Field)
}

func TestPlan_MultiTokenQueryAllowsExactHouseNumber(t *testing.T) {
	req := config.UserRequest{Q: "20 rue de rivoli"}
	tree := Plan(req, settings(), config.MatchPrefix).(query.Bool)

	hn, ok := tree.Filter[0].(query.Bool)
	require.True(t, ok)
	require.Len(t, hn.Should, 2)
	term, ok := hn.Should[1].(query.Term)
	require.True(t, ok)
	assert.Equal(t, "house_number", term.Field)
	assert.Equal(t, "20 rue de rivoli", term.Value)
}

// Invariant 6: for any all_data=true request, no coverage filter is present.
func TestPlan_AllDataOmitsCoverageFilter(t *testing.T) {
	req := config.UserRequest{Q: "paris", AllData: true}
	tree := Plan(req, settings(), config.MatchPrefix).(query.Bool)

	// filter = [houseNumberFilter, matchingFilter] only, no dataset
	// visibility clause, when all_data is set.
	assert.Len(t, tree.Filter, 2)
}

func TestPlan_WithoutAllDataAddsCoverageFilter(t *testing.T) {
	req := config.UserRequest{Q: "paris"}
	tree := Plan(req, settings(), config.MatchPrefix).(query.Bool)
	assert.Len(t, tree.Filter, 3)
}

// Scenario 2: a coord-bearing request gets a Gaussian proximity decay
// booster among its should-clauses.
func TestPlan_CoordRequestGetsProximityBooster(t *testing.T) {
	coord := place.Coord{Lon: 2.3522, Lat: 48.8566}
	req := config.UserRequest{Q: "20 rue de rivoli", Coord: &coord}
	tree := Plan(req, settings(), config.MatchPrefix).(query.Bool)

	var sawGauss bool
	for _, s := range tree.Should {
		if fs, ok := s.(query.FunctionScore); ok {
			for _, fn := range fs.Functions {
				if fn.Gauss != nil {
					sawGauss = true
				}
			}
		}
	}
	assert.True(t, sawGauss, "expected a gauss decay function in the should clauses")
}

// prefixOnlyAdminBump only fires in Prefix mode.
func TestPrefixOnlyAdminBump(t *testing.T) {
	assert.NotNil(t, prefixOnlyAdminBump(config.MatchPrefix))
	assert.Nil(t, prefixOnlyAdminBump(config.MatchFuzzy))
}
