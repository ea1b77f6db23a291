//go:build cgo

package normalizer

import (
	expand "github.com/openvenues/gopostal/expand"
)

// LibpostalNormalizer normalizes through libpostal's expansion tables,
// which understand locale-specific abbreviations (e.g. "St." vs "Street")
// that plain accent-folding cannot. Only available in cgo builds linked
// against libpostal.
type LibpostalNormalizer struct{}

func (LibpostalNormalizer) Normalize(s string) string {
	opts := expand.GetDefaultExpansionOptions()
	expansions := expand.ExpandAddressOptions(s, opts)
	if len(expansions) == 0 {
		return AsciiNormalizer{}.Normalize(s)
	}
	return expansions[0]
}

func newPlatform() NameNormalizer { return LibpostalNormalizer{} }
