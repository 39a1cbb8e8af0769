package database

import (
	"testing"

	"mingle/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		env      string
		allow    bool
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", "hybrid", "development", false, true, true, false},
		{"default is hybrid", "", "development", false, true, true, false},
		{"hybrid prod skips auto", "hybrid", "production", false, true, false, false},
		{"hybrid staging skips auto", "hybrid", "staging", false, true, false, false},
		{"sql only", "sql", "production", false, true, false, false},
		{"auto dev", "auto", "development", false, false, true, false},
		{"auto prod refused", "auto", "production", false, false, false, true},
		{"auto prod with override", "auto", "production", true, false, true, false},
		{"unknown mode", "yolo", "development", false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DBSchemaMode:                  tt.mode,
				Env:                           tt.env,
				DBAutoMigrateAllowDestructive: tt.allow,
			}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "init", first.Name)
	assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, first.DownScript, "DROP TABLE IF EXISTS users")
	assert.Equal(t, "000001_init", first.String())

	// versions must be registered in ascending order
	for i := 1; i < len(ms); i++ {
		assert.Greater(t, ms[i].Version, ms[i-1].Version)
	}
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "init"}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "profiles", "tags", "posts", "post_tags", "profile_followers"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
