package helloapi

import "unicode/utf8"

// TruncateUTF8 shortens s to at most maxBytes bytes without splitting a
// multi-byte rune. Invalid UTF-8 sequences are kept as they are.
func TruncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ClampLimit bounds a page size to [1, 1000], using 100 when unset.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return max(1, min(1000, limit))
}
