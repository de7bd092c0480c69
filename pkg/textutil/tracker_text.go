// Package textutil has small rune-safe string helpers.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns at most max runes of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// TruncateWithEllipsis appends "..." when s was cut.
func TruncateWithEllipsis(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return Truncate(s, max) + "..."
}

// CollapseWhitespace joins every whitespace run into a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
