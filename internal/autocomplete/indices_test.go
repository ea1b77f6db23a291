package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplace/geocore/internal/config"
)

func TestSelectIndices_DefaultsToAllTypes(t *testing.T) {
	got := selectIndices(config.UserRequest{AllData: true})
	assert.Len(t, got, len(allTypes))
}

func TestSelectIndices_StopOmittedWithoutDatasetAuthorization(t *testing.T) {
	got := selectIndices(config.UserRequest{Types: []string{"stop"}})
	assert.Empty(t, got)
}

func TestSelectIndices_StopKeptWithAllData(t *testing.T) {
	got := selectIndices(config.UserRequest{Types: []string{"stop"}, AllData: true})
	assert.Equal(t, []string{"place_stop"}, got)
}

func TestSelectIndices_StopKeptWithPtDatasets(t *testing.T) {
	got := selectIndices(config.UserRequest{Types: []string{"stop"}, PtDatasets: []string{"idfm"}})
	assert.Equal(t, []string{"place_stop"}, got)
}
