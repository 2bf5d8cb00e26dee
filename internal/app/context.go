package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/blinder/internal/cache"
	"github.com/oggyb/blinder/internal/realtime"
	"github.com/oggyb/blinder/internal/repository"
)

// AppContext holds shared dependencies (DB, Redis, Logger, repositories, realtime hub).
// It is built once in main and handed to every service and handler.
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Repos      *repository.Repositories
	Hub        *realtime.Hub
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Repos:      repository.New(db),
		Hub:        realtime.NewHub(logger),
	}
}
