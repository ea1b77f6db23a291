package autocomplete

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
)

// fakeBackend is a Backend test double returning a scripted sequence of
// results, one per call, and recording how many times Search was invoked.
type fakeBackend struct {
	results []*backend.Result
	calls   int
	err     error
}

func (f *fakeBackend) Search(ctx context.Context, p backend.SearchParams) (*backend.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		return &backend.Result{}, nil
	}
	return f.results[i], nil
}

func (f *fakeBackend) Count(ctx context.Context, p backend.SearchParams) (int, error) {
	return 0, nil
}

func newOrchestrator(be backend.Backend) *Orchestrator {
	s := config.DefaultQuerySettings()
	return NewOrchestrator(be, &s)
}

// Boundary behavior: empty index set -> autocomplete returns Ok([]) without
// ever touching the backend.
func TestAutocomplete_EmptyIndexSetReturnsEmptySlice(t *testing.T) {
	be := &fakeBackend{err: errors.New("should never be called")}
	o := newOrchestrator(be)

	req := config.UserRequest{Q: "x", Types: []string{"stop"}}
	places, err := o.Autocomplete(context.Background(), req)

	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Equal(t, 0, be.calls)
}

// Boundary behavior: Prefix returns non-empty -> Fuzzy is never executed.
func TestAutocomplete_NonEmptyPrefixSkipsFuzzy(t *testing.T) {
	be := &fakeBackend{results: []*backend.Result{
		{Places: []place.Place{{ID: "admin:fr:75056", Name: "Paris"}}},
	}}
	o := newOrchestrator(be)

	places, err := o.Autocomplete(context.Background(), config.UserRequest{Q: "paris"})

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Paris", places[0].Name)
	assert.Equal(t, 1, be.calls, "fuzzy must not run when prefix already returned hits")
}

// Boundary behavior: Prefix returns empty -> Fuzzy is executed exactly once.
func TestAutocomplete_EmptyPrefixRunsFuzzyExactlyOnce(t *testing.T) {
	be := &fakeBackend{results: []*backend.Result{
		{Places: nil},
		{Places: []place.Place{{ID: "street:osm:way:1", Name: "Rue X"}}},
	}}
	o := newOrchestrator(be)

	places, err := o.Autocomplete(context.Background(), config.UserRequest{Q: "xyzqwert", Types: []string{"street"}})

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, 2, be.calls)
}

// Scenario 1: a coordless admin query never decorates a distance field.
func TestAutocomplete_NoCoordLeavesDistanceAbsent(t *testing.T) {
	be := &fakeBackend{results: []*backend.Result{
		{Places: []place.Place{{Kind: place.KindAdmin, ID: "admin:fr:75056", Name: "Paris"}}},
	}}
	o := newOrchestrator(be)

	places, err := o.Autocomplete(context.Background(), config.UserRequest{Q: "paris", Types: []string{"admin"}})

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Nil(t, places[0].Distance)
}

// Scenario 2: a coord-bearing query decorates every result with a distance.
func TestAutocomplete_WithCoordDecoratesDistance(t *testing.T) {
	coord := place.Coord{Lon: 2.3522, Lat: 48.8566}
	hitCoord := place.Coord{Lon: 2.35, Lat: 48.85}
	be := &fakeBackend{results: []*backend.Result{
		{Places: []place.Place{{ID: "addr:1", HouseNumber: "20", Coord: hitCoord}}},
	}}
	o := newOrchestrator(be)

	req := config.UserRequest{Q: "20 rue de rivoli", Coord: &coord}
	places, err := o.Autocomplete(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, places, 1)
	require.NotNil(t, places[0].Distance)
	assert.Greater(t, *places[0].Distance, 0)
}

func TestAutocomplete_BackendErrorWrapsAsUnavailable(t *testing.T) {
	be := &fakeBackend{err: errors.New("connection refused")}
	o := newOrchestrator(be)

	_, err := o.Autocomplete(context.Background(), config.UserRequest{Q: "paris"})
	require.Error(t, err)
	var unavailable BackendUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestAutocomplete_ZoneTypeWithoutZoneTypeRequiresType(t *testing.T) {
	be := &fakeBackend{}
	o := newOrchestrator(be)

	_, err := o.Autocomplete(context.Background(), config.UserRequest{Q: "x", ZoneTypes: []string{"City"}})
	require.Error(t, err)
	var invalid InvalidParamError
	assert.ErrorAs(t, err, &invalid)
}
