// Package validation provides input normalization and validation for posts.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlphanumeric matches runs of anything that is not a lowercase letter or
// digit; each run becomes a single hyphen.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks decomposes and drops combining marks, so "Café" slugs as "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives the base slug for a title: lowercase, diacritics stripped,
// non-alphanumeric runs collapsed to single hyphens, leading/trailing hyphens
// trimmed. Titles with no usable characters fall back to "post".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "post"
	}
	return s
}
