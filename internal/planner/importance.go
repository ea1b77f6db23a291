// Package planner implements the autocomplete query planner (§4.1, C1): a
// pure translation of a user request and tuning settings into a query.Query
// tree. ZoomRatio and BlendWeights are kept as standalone pure functions
// per §9's design note, independently unit-testable from the planner.
package planner

import (
	"math"

	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/place"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ZoomRatio computes the zoom-ratio scalar from §4.1. With no coord, the
// planner behaves as if fully zoomed out (ratio == 1.0, invariant #3 in
// §8). With a coord, the ratio is derived from the proximity-decay curve
// clamped into the configured radius range.
func ZoomRatio(coord *place.Coord, curve config.GaussianCurve, radiusRange config.RadiusRange) float64 {
	if coord == nil {
		return 1.0
	}
	r := clamp(curve.OffsetKm+curve.ScaleKm, radiusRange.MinKm, radiusRange.MaxKm)
	num := math.Log1p(r) - math.Log1p(radiusRange.MinKm)
	den := math.Log1p(radiusRange.MaxKm) - math.Log1p(radiusRange.MinKm)
	if den == 0 {
		return 1.0
	}
	return num / den
}

// BlendWeights linearly interpolates between min and max, component-wise,
// by zoomRatio (§4.1's "weights = (1-zoom_ratio)*min + zoom_ratio*max").
func BlendWeights(zoomRatio float64, min, max config.BuildWeight) config.BuildWeight {
	lerp := func(a, b float64) float64 { return (1-zoomRatio)*a + zoomRatio*b }
	return config.BuildWeight{
		Admin:   lerp(min.Admin, max.Admin),
		Factor:  lerp(min.Factor, max.Factor),
		Missing: lerp(min.Missing, max.Missing),
	}
}

// MinWeightsFor selects min_radius_prefix vs min_radius_fuzzy per §4.1:
// "min_weights is min_radius_prefix when match mode is Prefix, else
// min_radius_fuzzy."
func MinWeightsFor(mode config.MatchMode, w config.ImportanceWeights) config.BuildWeight {
	if mode == config.MatchPrefix {
		return w.MinRadiusPrefix
	}
	return w.MinRadiusFuzzy
}
