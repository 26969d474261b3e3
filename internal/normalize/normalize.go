package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining marks so that
// "Beyoncé" and "Beyonce" produce the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key builds the canonical comparison key for a title/artist pair: case
// folded, diacritics stripped, punctuation removed, whitespace collapsed.
func Key(title, artist string) string {
	parts := make([]string, 0, 2)
	if t := Fold(title); t != "" {
		parts = append(parts, t)
	}
	if a := Fold(artist); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// KeyWithYear appends the release year to the key when known. Year suffixing
// is optional upstream; callers that disable it use Key directly.
func KeyWithYear(title, artist string, year int) string {
	key := Key(title, artist)
	if year <= 0 {
		return key
	}
	if key == "" {
		return strconv.Itoa(year)
	}
	return key + " " + strconv.Itoa(year)
}

// Fold canonicalizes a single metadata field without joining.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if folded, _, err := transform.String(stripMarks, value); err == nil {
		value = folded
	}
	value = strings.ToLower(value)

	var b strings.Builder
	b.Grow(len(value))
	lastSpace := true
	for _, r := range value {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
