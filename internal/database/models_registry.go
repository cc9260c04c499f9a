package database

import "reelhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Follow{},
		&models.Video{},
		&models.VideoReaction{},
		&models.Comment{},
		&models.CommentReaction{},
	}
}
