package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that carry no combining mark under NFD and need an explicit ASCII form.
var replacer = strings.NewReplacer(
	"ı", "i", "ß", "ss", "æ", "ae", "œ", "oe", "ø", "o", "đ", "d", "ł", "l", "þ", "th",
	"&", " and ",
)

// Generate creates a URL-friendly slug from an article title or category name.
// Accented Latin letters are folded to their ASCII base letter.
//
// Examples:
//   - "Amakuru y'Imikino" → "amakuru-y-imikino"
//   - "Élections présidentielles 2024" → "elections-presidentielles-2024"
//   - "Hello   World!" → "hello-world"
func Generate(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = replacer.Replace(s)

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && s == Generate(s)
}
