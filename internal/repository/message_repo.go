package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/blinder/internal/db"
)

// MessageRepository provides data access methods for the Message model.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create appends a message and fills in its ID.
func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByMatch returns the thread of a match, oldest first.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", matchID, err)
	}
	return msgs, nil
}
