package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/autocomplete"
	"github.com/geoplace/geocore/internal/cache"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
)

// Controller wires the autocomplete orchestrator onto the HTTP surface
// described in §6: GET/POST /autocomplete, GET /features/{id}, GET
// /reverse, GET /status.
type Controller struct {
	orchestrator *autocomplete.Orchestrator
	resultCache  *cache.ResultCache[[]place.Place]
	logger       *zap.Logger
}

// NewController builds a Controller.
func NewController(o *autocomplete.Orchestrator, rc *cache.ResultCache[[]place.Place], logger *zap.Logger) *Controller {
	return &Controller{orchestrator: o, resultCache: rc, logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AutocompleteQuery parses a GET query string into a UserRequest.
func (ctl *Controller) AutocompleteQuery(c *gin.Context) {
	req := config.UserRequest{
		Q:          c.Query("q"),
		Offset:     queryUint(c, "offset", 0),
		Limit:      queryUint(c, "limit", 10),
		Langs:      c.QueryArray("lang[]"),
		PtDatasets: c.QueryArray("pt_dataset[]"),
		PoiDatasets: c.QueryArray("poi_dataset[]"),
		Types:      c.QueryArray("type[]"),
		ZoneTypes:  c.QueryArray("zone_type[]"),
		PoiTypes:   c.QueryArray("poi_type[]"),
		AllData:    c.Query("all_data") == "true",
		Debug:      c.Query("debug") == "true",
	}

	if lonStr, latStr := c.Query("lon"), c.Query("lat"); lonStr != "" && latStr != "" {
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		lat, latErr := strconv.ParseFloat(latStr, 64)
		if lonErr != nil || latErr != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidParam", Message: "lon/lat must be floats"})
			return
		}
		req.Coord = &place.Coord{Lon: lon, Lat: lat}
	}
	if timeoutStr := c.Query("timeout"); timeoutStr != "" {
		if t, err := strconv.ParseUint(timeoutStr, 10, 32); err == nil {
			v := uint(t)
			req.Timeout = &v
		}
	}

	ctl.runAutocomplete(c, req)
}

// AutocompletePost decodes a JSON body straight into UserRequest,
// surfacing malformed JSON as InvalidJson. UserRequest carries no json
// tags, so body keys are matched case-insensitively against its Go field
// names (q, coord, shape, offset, limit, langs, ptdatasets, poidatasets,
// alldata, types, zonetypes, poitypes, debug, timeout); the GET names such
// as lang[], pt_dataset[] or lon/lat are not recognized.
func (ctl *Controller) AutocompletePost(c *gin.Context) {
	var req config.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidJson", Message: err.Error()})
		return
	}
	ctl.runAutocomplete(c, req)
}

func (ctl *Controller) runAutocomplete(c *gin.Context, req config.UserRequest) {
	ctx := c.Request.Context()

	key := cache.Key(req.Langs, req.Types, hashScope(req), req.Q, matchModeLabel(req))
	if ctl.resultCache != nil {
		if cached, ok := ctl.resultCache.Get(ctx, key); ok {
			c.JSON(http.StatusOK, gin.H{"results": cached})
			return
		}
	}

	places, err := ctl.orchestrator.Autocomplete(ctx, req)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	if ctl.resultCache != nil {
		ctl.resultCache.Set(ctx, key, places)
	}
	c.JSON(http.StatusOK, gin.H{"results": places})
}

// Feature serves GET /features/{id} (§4.3).
func (ctl *Controller) Feature(c *gin.Context) {
	id := c.Param("id")
	ptDatasets := c.QueryArray("pt_dataset[]")
	allData := c.Query("all_data") == "true"

	places, err := ctl.orchestrator.Feature(c.Request.Context(), id, ptDatasets, allData)
	if err != nil {
		ctl.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": places})
}

// Reverse serves GET /reverse: a coordinate-only autocomplete lookup
// restricted to addr/street documents, reusing the same orchestrator path.
func (ctl *Controller) Reverse(c *gin.Context) {
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	if lonErr != nil || latErr != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidParam", Message: "lon/lat are required floats"})
		return
	}

	req := config.UserRequest{
		Coord: &place.Coord{Lon: lon, Lat: lat},
		Types: []string{"addr", "street"},
		Limit: 1,
	}
	places, err := ctl.orchestrator.Autocomplete(c.Request.Context(), req)
	if err != nil {
		ctl.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": places})
}

// Status serves GET /status.
func (ctl *Controller) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (ctl *Controller) writeError(c *gin.Context, err error) {
	switch e := err.(type) {
	case autocomplete.InvalidParamError:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidParam", Message: e.Message})
	case autocomplete.ObjectNotFoundError:
		c.JSON(http.StatusNotFound, errorResponse{Error: "ObjectNotFound", Message: e.ID})
	case autocomplete.BackendUnavailableError:
		ctl.logger.Error("backend unavailable", zap.Error(e))
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "BackendUnavailable", Message: e.Error()})
	case autocomplete.InvalidJSONError:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidJson", Message: e.Message})
	default:
		ctl.logger.Error("unexpected autocomplete error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal", Message: err.Error()})
	}
}

func queryUint(c *gin.Context, key string, def uint) uint {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}

func matchModeLabel(req config.UserRequest) string {
	// Cache keys are mode-agnostic at request time: the orchestrator itself
	// decides prefix vs fuzzy, and a cached entry represents "the final
	// answer for this request" regardless of which stage produced it.
	return "auto"
}

// hashScope folds every request field besides langs, types and q that
// changes the answer (dataset visibility, type filters, coord, shape,
// paging, debug) into the key's dataset component.
func hashScope(req config.UserRequest) string {
	b, _ := json.Marshal(struct {
		PtDatasets, PoiDatasets, ZoneTypes, PoiTypes []string
		AllData, Debug                               bool
		Offset, Limit                                uint
		Coord                                        *place.Coord
		Shape                                        *place.Shape
	}{req.PtDatasets, req.PoiDatasets, req.ZoneTypes, req.PoiTypes, req.AllData, req.Debug, req.Offset, req.Limit, req.Coord, req.Shape})
	return string(b)
}
