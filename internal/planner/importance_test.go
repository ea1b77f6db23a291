package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
)

func TestZoomRatio_NoCoordIsFullyZoomedOut(t *testing.T) {
	curve := config.GaussianCurve{ScaleKm: 50, OffsetKm: 2, Decay: 0.5}
	rr := config.RadiusRange{MinKm: 2, MaxKm: 1000}
	assert.Equal(t, 1.0, ZoomRatio(nil, curve, rr))
}

func TestZoomRatio_ClampedIntoUnitRange(t *testing.T) {
	curve := config.GaussianCurve{ScaleKm: 50, OffsetKm: 2, Decay: 0.5}
	rr := config.RadiusRange{MinKm: 2, MaxKm: 1000}

	coord := testCoord()
	zr := ZoomRatio(&coord, curve, rr)
	assert.GreaterOrEqual(t, zr, 0.0)
	assert.LessOrEqual(t, zr, 1.0)
}

func TestZoomRatio_DegenerateRangeDefaultsToOne(t *testing.T) {
	curve := config.GaussianCurve{ScaleKm: 50, OffsetKm: 2, Decay: 0.5}
	rr := config.RadiusRange{MinKm: 10, MaxKm: 10}
	coord := testCoord()
	assert.Equal(t, 1.0, ZoomRatio(&coord, curve, rr))
}

func TestBlendWeights_EndpointsReturnInputsExactly(t *testing.T) {
	min := config.BuildWeight{Admin: 0.1, Factor: 1.0, Missing: 0.0}
	max := config.BuildWeight{Admin: 1.0, Factor: 3.0, Missing: 0.0}

	assert.Equal(t, min, BlendWeights(0.0, min, max))
	assert.Equal(t, max, BlendWeights(1.0, min, max))
}

func TestBlendWeights_Midpoint(t *testing.T) {
	min := config.BuildWeight{Admin: 0.0, Factor: 0.0, Missing: 0.0}
	max := config.BuildWeight{Admin: 2.0, Factor: 4.0, Missing: 0.0}

	got := BlendWeights(0.5, min, max)
	assert.InDelta(t, 1.0, got.Admin, 1e-9)
	assert.InDelta(t, 2.0, got.Factor, 1e-9)
}

func TestMinWeightsFor(t *testing.T) {
	w := config.ImportanceWeights{
		MinRadiusPrefix: config.BuildWeight{Admin: 1},
		MinRadiusFuzzy:  config.BuildWeight{Admin: 2},
	}
	assert.Equal(t, w.MinRadiusPrefix, MinWeightsFor(config.MatchPrefix, w))
	assert.Equal(t, w.MinRadiusFuzzy, MinWeightsFor(config.MatchFuzzy, w))
}

func testCoord() place.Coord {
	return place.Coord{Lon: 2.3522, Lat: 48.8566}
}
