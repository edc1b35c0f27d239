// Package util provides common utility functions.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// LabelSlug converts a group label to a URL-safe slug that keeps
// non-Latin letters, so Cyrillic genres stay readable.
//
// Normalization rules:
//  1. NFKC-normalize (folds ligatures and full-width forms)
//  2. Lowercase
//  3. Keep letters and digits; every other run becomes one dash
//  4. Trim leading/trailing dashes
//
// Examples:
//
//	"Наукова фантастика" → "наукова-фантастика"
//	"Sci-Fi/Fantasy"     → "sci-fi-fantasy"
//	"Мовознавство (uk)"  → "мовознавство-uk"
//	"Жанр 4"             → "жанр-4"
func LabelSlug(input string) string {
	s := strings.ToLower(norm.NFKC.String(input))

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	return b.String()
}
