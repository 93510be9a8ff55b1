package database

import "quill/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM
// models. Registration happens exactly once, at connection time, and the
// resulting handle is injected into handlers rather than read from globals.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Post{},
	}
}
