package backend

import (
	"encoding/json"
	"fmt"

	"github.com/geoplace/geocore/internal/place"
)

// decodeHit dispatches a raw backend document onto the right Place
// variant by its type discriminator (§9's design note), read from the
// document's "type" field, whose value is one of addr, street, admin, poi
// or stop.
func decodeHit(src json.RawMessage) (place.Place, error) {
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(src, &disc); err != nil {
		return place.Place{}, fmt.Errorf("decoding hit discriminator: %w", err)
	}

	var p place.Place
	if err := json.Unmarshal(src, &p); err != nil {
		return place.Place{}, fmt.Errorf("decoding hit body: %w", err)
	}

	switch place.Kind(disc.Type) {
	case place.KindAddr, place.KindStreet, place.KindAdmin, place.KindPoi, place.KindStop:
		p.Kind = place.Kind(disc.Type)
	default:
		return place.Place{}, fmt.Errorf("unknown place discriminator %q", disc.Type)
	}
	return p, nil
}

// decodeHits decodes every element of a raw hit array, skipping (and
// returning alongside) any hit whose discriminator is unrecognized rather
// than failing the whole response — a single malformed document should
// not take down an otherwise-good result page.
func decodeHits(raw []json.RawMessage) ([]place.Place, []string) {
	places := make([]place.Place, 0, len(raw))
	var skipped []string
	for _, r := range raw {
		p, err := decodeHit(r)
		if err != nil {
			skipped = append(skipped, err.Error())
			continue
		}
		places = append(places, p)
	}
	return places, skipped
}
