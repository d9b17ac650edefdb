package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveInitials returns the avatar text for a participant identifier.
//
// For an email only the local part (before the first "@") is used. The
// text is split on runs of whitespace, '.', '_' and '-'. Two or more
// tokens give the first letter of each of the first two tokens; one
// token gives its first two letters; no tokens give the first two letters
// of the unsplit text. The result is upper-cased and may be shorter than
// two letters.
//
// Whitespace is the ECMAScript set (U+FEFF counts, U+0085 does not) and
// upper-casing uses full Unicode case mapping, so "ß" becomes "SS" and the
// result can be longer than the letters taken. Letters are counted in code
// points, never in UTF-16 units.
func DeriveInitials(identifier string) string {
	if identifier == "" {
		return ""
	}
	raw := identifier
	if at := strings.IndexByte(identifier, '@'); at >= 0 {
		raw = identifier[:at]
	}

	tokens := strings.FieldsFunc(raw, isNameSeparator)
	switch len(tokens) {
	case 0:
		return upperPrefix(raw, 2)
	case 1:
		return upperPrefix(tokens[0], 2)
	default:
		return upperPrefix(tokens[0], 1) + upperPrefix(tokens[1], 1)
	}
}

func isNameSeparator(r rune) bool {
	switch r {
	case '.', '_', '-', '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

// upperPrefix upper-cases the first n runes of s.
func upperPrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Upper(language.Und).String(string(runes))
}
