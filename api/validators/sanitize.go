package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText trims free-form admin and payee notes, drops control
// characters other than newlines and caps the result at maxRunes runes so
// Arabic text is never cut mid-character.
func SanitizeText(input string, maxRunes int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		cleaned = string([]rune(cleaned)[:maxRunes])
	}
	return strings.TrimSpace(cleaned)
}
