// Package testutil builds throwaway infrastructure for package tests.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/cache"
	"github.com/oggyb/blinder/internal/config"
	"github.com/oggyb/blinder/internal/db"
	applog "github.com/oggyb/blinder/internal/logger"
	"github.com/oggyb/blinder/internal/repository"
)

// NewTestDB opens a migrated in-memory SQLite database.
// A single connection keeps every goroutine on the same in-memory schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        db.NowFunc,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewTestCache starts a miniredis instance and returns a cache bound to it.
func NewTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// NewTestApp wires a full AppContext over SQLite + miniredis.
func NewTestApp(t *testing.T) *app.AppContext {
	t.Helper()

	database := NewTestDB(t)
	rc, _ := NewTestCache(t)
	return app.New(database, rc, applog.Discard())
}

// CreateUser inserts a user with sane defaults for any zero field.
func CreateUser(t *testing.T, database *gorm.DB, u db.User) db.User {
	t.Helper()

	if u.Email == "" {
		u.Email = u.Name + "@test.edu"
	}
	if u.Gender == "" {
		u.Gender = db.GenderFemale
	}
	if u.GenderPreference == "" {
		u.GenderPreference = db.PreferenceEither
	}
	if u.UniversityLocation == "" {
		u.UniversityLocation = "X"
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}

// Repos is a shorthand for repository.New in tests.
func Repos(database *gorm.DB) *repository.Repositories {
	return repository.New(database)
}
