package repository

import (
	"testing"

	"mingle/internal/database"
	"mingle/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

// createAccount inserts a user and its profile, returning the profile.
func createAccount(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.Profile{
		UserID:   user.ID,
		Username: username,
		Email:    user.Email,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
