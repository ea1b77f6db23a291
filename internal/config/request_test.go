package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplace/geocore/internal/place"
)

func TestUserRequest_HasCoord(t *testing.T) {
	assert.False(t, UserRequest{}.HasCoord())
	assert.True(t, UserRequest{Coord: &place.Coord{Lon: 1, Lat: 2}}.HasCoord())
}

func TestUserRequest_Tokens(t *testing.T) {
	cases := []struct {
		name string
		q    string
		want []string
	}{
		{"single token", "paris", []string{"paris"}},
		{"multi token collapses whitespace", "12  rue de\tparis", []string{"12", "rue", "de", "paris"}},
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserRequest{Q: tc.q}.Tokens())
		})
	}
}

func TestUserRequest_HasType(t *testing.T) {
	r := UserRequest{Types: []string{"city", "street"}}
	assert.True(t, r.HasType("city"))
	assert.False(t, r.HasType("admin"))
}
