package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbBoundaryBuilder_TwoByTwoSquareCentroid(t *testing.T) {
	nodes := map[int64]Node{
		1: {ID: 1, Lon: 0, Lat: 0},
		2: {ID: 2, Lon: 0, Lat: 2},
		3: {ID: 3, Lon: 2, Lat: 2},
		4: {ID: 4, Lon: 2, Lat: 0},
	}
	ways := map[int64]Way{
		100: {ID: 100, NodeIDs: []int64{1, 2, 3, 4, 1}},
	}
	rel := Relation{
		ID:      1,
		Members: []Member{{Type: MemberWay, Ref: 100, Role: "outer"}},
	}

	centroid, shape, ok := OrbBoundaryBuilder{}.Build(rel, ways, nodes)
	require.True(t, ok)
	require.NotNil(t, shape)
	assert.Equal(t, "Polygon", shape.Type)
	assert.InDelta(t, 1.0, centroid.Lon, 0.01)
	assert.InDelta(t, 1.0, centroid.Lat, 0.01)
}

func TestOrbBoundaryBuilder_DegenerateRingReportsNotOk(t *testing.T) {
	nodes := map[int64]Node{
		1: {ID: 1, Lon: 0, Lat: 0},
		2: {ID: 2, Lon: 0, Lat: 2},
	}
	ways := map[int64]Way{
		100: {ID: 100, NodeIDs: []int64{1, 2}},
	}
	rel := Relation{
		ID:      1,
		Members: []Member{{Type: MemberWay, Ref: 100, Role: "outer"}},
	}

	_, shape, ok := OrbBoundaryBuilder{}.Build(rel, ways, nodes)
	assert.False(t, ok)
	assert.Nil(t, shape)
}

func TestOrbBoundaryBuilder_MissingMemberWaySkipped(t *testing.T) {
	rel := Relation{
		ID:      1,
		Members: []Member{{Type: MemberWay, Ref: 999, Role: "outer"}},
	}
	_, shape, ok := OrbBoundaryBuilder{}.Build(rel, map[int64]Way{}, map[int64]Node{})
	assert.False(t, ok)
	assert.Nil(t, shape)
}
