package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/blinder/internal/db"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent inserts m unless a match for the same pair already exists.
//
// Behavior:
//   - A single INSERT ... ON CONFLICT (pair_key) DO NOTHING decides the race.
//   - created reports whether this call inserted the row.
//   - The returned match is always the row stored for the pair.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *db.Match) (*db.Match, bool, error) {
	if m.PairKey == "" {
		m.PairKey = db.PairKey(m.User1ID, m.User2ID)
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create match %s: %w", m.PairKey, res.Error)
	}
	if res.RowsAffected == 1 {
		return m, true, nil
	}

	existing, err := r.FindByPairKey(ctx, m.PairKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindByID loads a match. Missing rows wrap ErrNotFound.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find match %s: %w", id, err)
	}
	return &m, nil
}

// FindByPairKey loads the match for an unordered pair.
func (r *MatchRepository) FindByPairKey(ctx context.Context, pairKey string) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, "pair_key = ?", pairKey).Error; err != nil {
		return nil, fmt.Errorf("find match by pair %s: %w", pairKey, err)
	}
	return &m, nil
}

// Delete removes a match and reports whether a row was actually deleted.
func (r *MatchRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Match{})
	if res.Error != nil {
		return false, fmt.Errorf("delete match %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListForUser returns every match where userID is either party, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("matched_at DESC, id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches of %d: %w", userID, err)
	}
	return matches, nil
}
