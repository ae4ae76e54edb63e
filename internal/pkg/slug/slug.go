// Package slug derives URL-safe identifiers from display names
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// removeDiacritics folds accented characters to their ASCII base form
// (é -> e, č -> c). Characters NFD cannot decompose are mapped explicitly.
func removeDiacritics(s string) string {
	replacer := strings.NewReplacer(
		"đ", "d", "Đ", "D",
		"ß", "ss",
		"ø", "o", "Ø", "O",
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
	)
	s = replacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Make derives a slug from a display name: diacritics folded, lowercased,
// non-alphanumeric runs collapsed to single hyphens, edges trimmed.
func Make(name string) string {
	s := removeDiacritics(name)
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Unique resolves slug collisions by appending an incrementing numeric
// suffix: base, base-1, base-2, ... The exists callback answers whether a
// candidate is already taken within the scope (catalog, brand, ...).
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 0; ; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
