package utils

import (
	"strings"
	"unicode"
)

const MaxIdentifierLength = 64

// ValidIdentifier reports whether s can be stored as an entity reference by
// the relational and in-memory gateways: non-empty, bounded, no whitespace or
// control characters.
func ValidIdentifier(s string) bool {
	if s == "" || len(s) > MaxIdentifierLength {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) < 0
}
