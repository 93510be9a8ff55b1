package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits, measured in characters after trimming.
const (
	MinTitleLen   = 3
	MaxTitleLen   = 200
	MinContentLen = 10
	MaxExcerptLen = 500
	MaxTagLen     = 50
)

var coverImagePattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

// PostFields carries the user-editable fields of a post through
// normalization and validation.
type PostFields struct {
	Title      string
	Content    string
	Excerpt    string
	CoverImage string
	Tags       []string
}

// NormalizePost trims all text fields, normalizes tags and validates the
// result. It returns the normalized fields and one human-readable message per
// violated field; an empty message list means the fields are valid.
func NormalizePost(f PostFields) (PostFields, []string) {
	var msgs []string

	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.CoverImage = strings.TrimSpace(f.CoverImage)
	f.Tags = NormalizeTags(f.Tags)

	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		msgs = append(msgs, "Title is required")
	case n < MinTitleLen || n > MaxTitleLen:
		msgs = append(msgs, fmt.Sprintf("Title must be between %d and %d characters", MinTitleLen, MaxTitleLen))
	}

	switch n := utf8.RuneCountInString(f.Content); {
	case n == 0:
		msgs = append(msgs, "Content is required")
	case n < MinContentLen:
		msgs = append(msgs, fmt.Sprintf("Content must be at least %d characters", MinContentLen))
	}

	if utf8.RuneCountInString(f.Excerpt) > MaxExcerptLen {
		msgs = append(msgs, fmt.Sprintf("Excerpt must be %d characters or less", MaxExcerptLen))
	}

	if f.CoverImage != "" && !coverImagePattern.MatchString(f.CoverImage) {
		msgs = append(msgs, "Cover image must be an http(s) URL ending in jpg, jpeg, png, gif or webp")
	}

	for _, tag := range f.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLen {
			msgs = append(msgs, fmt.Sprintf("Tags must be %d characters or less", MaxTagLen))
			break
		}
	}

	return f, msgs
}

// NormalizeTags trims each tag and drops blank entries, preserving order.
// No de-duplication beyond what trimming naturally collapses.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
