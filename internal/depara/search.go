package depara

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldSearch lowercases and strips diacritics so "Deduções" matches
// "deducoes". Registry labels are Portuguese; accent-insensitive matching
// keeps the manual reconciliation UI forgiving.
func foldSearch(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// matchesSearch reports whether the entry matches the folded search term
// across code, title and classification.
func matchesSearch(e Entry, folded string) bool {
	if folded == "" {
		return true
	}
	return strings.Contains(foldSearch(e.AccountCode), folded) ||
		strings.Contains(foldSearch(e.AccountTitle), folded) ||
		strings.Contains(foldSearch(e.Classification), folded)
}

func matchesFilter(e Entry, f Filter, folded string) bool {
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.Group != nil && e.Group != *f.Group {
		return false
	}
	return matchesSearch(e, folded)
}
