package repository

import (
	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = gorm.ErrRecordNotFound

// Repositories bundles the per-entity data access objects.
// It is built once at process start and shared by all services.
type Repositories struct {
	Users        *UserRepository
	Swipes       *SwipeRepository
	Matches      *MatchRepository
	Messages     *MessageRepository
	Universities *UniversityRepository
}

// New wires all repositories against a single connection pool.
func New(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Swipes:       NewSwipeRepository(database),
		Matches:      NewMatchRepository(database),
		Messages:     NewMessageRepository(database),
		Universities: NewUniversityRepository(database),
	}
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
