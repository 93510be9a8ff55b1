// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Post represents a single blog post.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Excerpt    string    `json:"excerpt"`
	CoverImage string    `json:"coverImage"`
	Tags       TagList   `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TagList is an ordered list of post tags. On input it accepts either a JSON
// array of strings or a single comma-separated string; trimming and blank
// removal happen in validation.
type TagList []string

// UnmarshalJSON accepts both `["a","b"]` and `"a,b"` input forms.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = TagList{}
		return nil
	}
	*t = strings.Split(s, ",")
	return nil
}

// MarshalJSON renders a nil list as [] so API responses never carry null tags.
func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
