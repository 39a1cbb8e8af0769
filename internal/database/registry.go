package database

import (
	"mingle/internal/models"

	"gorm.io/gorm"
)

// AllModels lists every model AutoMigrate manages, in dependency order.
// The profile_followers and post_tags join tables are created implicitly
// through the many2many associations on Profile and Post.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Tag{},
		&models.Post{},
	}
}

// Migrate applies the schema for every registered model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
