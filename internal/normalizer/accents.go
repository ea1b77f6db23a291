package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining diacritic marks from s, decomposing to
// NFD, dropping every Mn-category rune, and recomposing to NFC.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// isMn reports whether r is a combining (nonspacing) diacritic mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// RemoveAccentsAndLowercase strips diacritics and folds to lowercase, the
// two steps every query/name normalization pass applies before matching.
func RemoveAccentsAndLowercase(s string) string {
	noAccents := StripDiacritics(s)
	return strings.ToLower(noAccents)
}
