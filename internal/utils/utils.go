// Package utils contains general helpers shared by the srcview packages.
package utils

import (
	"strings"
	"unicode/utf8"
)

// binarySniffLength bounds how much content IsBinary inspects.
const binarySniffLength = 8000

// DeduplicateNames trims names, drops empty ones and removes duplicates while
// preserving the first occurrence order.
func DeduplicateNames(names []string) []string {
	encounteredNames := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			continue
		}
		if _, exists := encounteredNames[trimmedName]; exists {
			continue
		}
		encounteredNames[trimmedName] = struct{}{}
		result = append(result, trimmedName)
	}
	return result
}

// IsBinary reports whether the leading bytes of data look like binary content:
// invalid UTF-8 or a NUL byte.
func IsBinary(data []byte) bool {
	sample := data
	if len(sample) > binarySniffLength {
		sample = sample[:binarySniffLength]
		// A multi-byte rune may straddle the cut.
		for trimmed := 0; trimmed < utf8.UTFMax && len(sample) > 0 && !utf8.Valid(sample); trimmed++ {
			sample = sample[:len(sample)-1]
		}
	}
	if !utf8.Valid(sample) {
		return true
	}
	for _, byteValue := range sample {
		if byteValue == 0 {
			return true
		}
	}
	return false
}
