package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// TitleKey normalizes a title for exact-match lookup. Matching must survive
// the usual mismatches between catalog values and document names: casing,
// accents ("La Última Frontera" vs "la ultima frontera"), punctuation, and
// underscore-separated file stems.
func TitleKey(title string) string {
	folded, _, err := transform.String(diacriticsFold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '_' || r == '-' || r == '\t':
			b.WriteRune(' ')
		}
		// Remaining punctuation is dropped entirely
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
