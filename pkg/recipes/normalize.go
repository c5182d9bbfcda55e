package recipes

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes diacritic marks after canonical decomposition, so
// "Jalapeño" and "jalapeno" normalize to the same key. Transformers carry
// buffer state, so a fresh chain per call.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeName reduces an ingredient or item name to a matching key:
// case-folded, diacritics stripped, whitespace collapsed
func NormalizeName(name string) string {
	out, _, err := transform.String(stripMarks(), name)
	if err != nil {
		out = name
	}
	// Casers are stateful, so one per call
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}
