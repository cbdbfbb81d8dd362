package stringutils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeContent drops NUL, C0/C1 control characters (tab, newline and
// carriage return survive) and invalid UTF-8 from user supplied text, then
// trims surrounding whitespace.
func SanitizeContent(s string) string {
	if utf8.ValidString(s) && !hasControlChars(s) {
		return strings.TrimSpace(s)
	}

	var builder strings.Builder
	builder.Grow(len(s))

	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				continue
			}
		}
		if isControl(r) {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			builder.WriteRune(r)
		}
	}

	return strings.TrimSpace(builder.String())
}

// NormalizeHandle returns the canonical form of a username.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isControl(r rune) bool {
	if r < 32 {
		return r != '\t' && r != '\n' && r != '\r'
	}
	return r == 127 || (r >= 128 && r <= 159)
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if isControl(r) {
			return true
		}
	}
	return false
}
