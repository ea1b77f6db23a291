package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/autocomplete"
	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
)

type fakeBackend struct {
	result *backend.Result
	err    error
}

func (b *fakeBackend) Search(ctx context.Context, p backend.SearchParams) (*backend.Result, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

func (b *fakeBackend) Count(ctx context.Context, p backend.SearchParams) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	return len(b.result.Places), nil
}

func newTestController(be backend.Backend) (*Controller, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	s := config.DefaultQuerySettings()
	o := autocomplete.NewOrchestrator(be, &s)
	ctl := NewController(o, nil, zap.NewNop())

	r := gin.New()
	r.GET("/autocomplete", ctl.AutocompleteQuery)
	r.POST("/autocomplete", ctl.AutocompletePost)
	r.GET("/features/:id", ctl.Feature)
	r.GET("/reverse", ctl.Reverse)
	r.GET("/status", ctl.Status)
	return ctl, r
}

func TestAutocompleteQuery_ReturnsResultsFromBackend(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{Places: []place.Place{{ID: "admin:fr:75", Name: "Paris"}}}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=paris", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["results"], 1)
}

func TestAutocompleteQuery_InvalidLonLatReturnsBadRequest(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=paris&lon=abc&lat=48", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutocompleteQuery_ZoneTypeWithoutTypeReturnsBadRequest(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=paris&zone_type[]=city", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutocompletePost_MalformedJSONReturnsInvalidJson(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodPost, "/autocomplete", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "InvalidJson", body.Error)
}

func TestFeature_ObjectNotFoundReturns404(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/features/admin:fr:missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReverse_MissingCoordReturnsBadRequest(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/reverse", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus_ReturnsOK(t *testing.T) {
	be := &fakeBackend{result: &backend.Result{}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWriteError_BackendUnavailableMapsToServiceUnavailable(t *testing.T) {
	be := &fakeBackend{err: assertError{"boom"}}
	_, r := newTestController(be)

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=paris", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
