package normalizer

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// NameNormalizer canonicalizes a place or street name, folding casing and
// accenting so that "Rue de la Paix" and "rue de la paix" normalize to the
// same string. The planner and street ingestion (C5) do not call it: street
// dedup keys use the raw name tag and queries are sent as typed.
type NameNormalizer interface {
	Normalize(s string) string
}

// AsciiNormalizer strips diacritics and folds to lowercase ASCII using
// golang.org/x/text/unicode/norm and github.com/mozillazg/go-unidecode. It
// is the portable fallback when libpostal isn't compiled in (no cgo, or
// built without the libpostal shared library).
type AsciiNormalizer struct{}

func (AsciiNormalizer) Normalize(s string) string {
	folded := unidecode.Unidecode(RemoveAccentsAndLowercase(s))
	return strings.Join(strings.Fields(folded), " ")
}

// New returns the best available NameNormalizer: libpostal-backed when this
// binary was built with cgo and the libpostal shared library, the portable
// ASCII fallback otherwise. See normalizer_cgo.go / normalizer_nocgo.go.
func New() NameNormalizer {
	return newPlatform()
}
