// Package slug normalizes display strings for token-equality comparisons:
// genre descriptions become stable filter tokens and search queries are
// matched accent- and case-insensitively.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritics. Used on both sides of a
// substring search so "comedia" matches "Comédia".
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Slugify folds s and collapses whitespace runs into single hyphens,
// producing the token form genre filters compare against.
func Slugify(s string) string {
	return strings.Join(strings.Fields(Fold(strings.TrimSpace(s))), "-")
}
