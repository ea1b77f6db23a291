package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool_OmitsEmptyClauses(t *testing.T) {
	b := Bool{Must: []Query{Term{Field: "type", Value: "admin"}}}
	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	inner := decoded["bool"]
	_, hasMust := inner["must"]
	_, hasShould := inner["should"]
	_, hasFilter := inner["filter"]
	assert.True(t, hasMust)
	assert.False(t, hasShould)
	assert.False(t, hasFilter)
}

func TestFieldBoost_StringRendering(t *testing.T) {
	assert.Equal(t, "label", FieldBoost{Field: "label"}.String())
	assert.Equal(t, "label^2.5", FieldBoost{Field: "label", Boost: 2.5}.String())
}

func TestMultiMatch_RendersFieldBoostsAndOptionalClauses(t *testing.T) {
	m := MultiMatch{
		Query:              "paris",
		Fields:             []FieldBoost{{Field: "label", Boost: 2}, {Field: "name"}},
		Type:               "best_fields",
		MinimumShouldMatch: "80%",
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded struct {
		MultiMatch struct {
			Query              string   `json:"query"`
			Fields             []string `json:"fields"`
			Type               string   `json:"type"`
			MinimumShouldMatch string   `json:"minimum_should_match"`
			Operator           string   `json:"operator,omitempty"`
		} `json:"multi_match"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"label^2", "name"}, decoded.MultiMatch.Fields)
	assert.Equal(t, "80%", decoded.MultiMatch.MinimumShouldMatch)
	assert.Empty(t, decoded.MultiMatch.Operator)
}

func TestWeight_ReturnsPointerToValue(t *testing.T) {
	w := Weight(0.5)
	require.NotNil(t, w)
	assert.Equal(t, 0.5, *w)
}

func TestFunctionScore_DefaultsBoostModeToMultiply(t *testing.T) {
	fs := FunctionScore{Functions: []ScoreFunction{{Weight: Weight(1)}}}
	raw, err := json.Marshal(fs)
	require.NoError(t, err)

	var decoded struct {
		FunctionScore struct {
			BoostMode string `json:"boost_mode"`
		} `json:"function_score"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "multiply", decoded.FunctionScore.BoostMode)
}
