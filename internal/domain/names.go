package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName returns the case-folded form of a display name used for
// case-insensitive lookups. Unlike strings.ToLower it handles full Unicode
// case folding, so "STRASSE" and "straße" fold to the same key.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
