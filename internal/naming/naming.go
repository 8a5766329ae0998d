// Package naming holds the identifier transforms used by the emitters.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SnakeToPascal splits s on '_', uppercases the first character of every
// non-empty chunk and concatenates the chunks: "get_all_pets" -> "GetAllPets".
func SnakeToPascal(s string) string {
	var b strings.Builder
	for _, chunk := range strings.Split(s, "_") {
		if chunk == "" {
			continue
		}
		b.WriteString(FirstLetterToUpper(chunk))
	}
	return b.String()
}

// FirstLetterToUpper uppercases the first character and leaves the rest
// untouched.
func FirstLetterToUpper(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Identifier replaces every character that cannot appear in an identifier
// with '_'.
func Identifier(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
}
