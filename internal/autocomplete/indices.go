package autocomplete

import "github.com/geoplace/geocore/internal/config"

var allTypes = []string{"addr", "admin", "street", "poi", "stop"}

// indexForType maps an entity type to its backend index name.
func indexForType(t string) string { return "place_" + t }

// selectIndices derives the concrete index set from the request (§4.2's
// "Index selection"). Stop documents are gated behind pt_datasets: with
// all_data=false and no pt_datasets, there is no dataset that could ever
// authorize a transit document, so the stop index is omitted entirely
// rather than relying on the per-document coverage filter to empty it out.
func selectIndices(req config.UserRequest) []string {
	types := req.Types
	if len(types) == 0 {
		types = allTypes
	}

	var indices []string
	for _, t := range types {
		if t == "stop" && !req.AllData && len(req.PtDatasets) == 0 {
			continue
		}
		indices = append(indices, indexForType(t))
	}
	return indices
}
