package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/utils/pagination"
)

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates all queries related to likes/dislikes between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or updates the current swipe for swiper -> swipee.
//
// Behavior:
//   - If (swiper_id, swipee_id) pair exists → action, reason and updated_at are overwritten.
//   - If it doesn’t exist → a new row is inserted.
//   - Composite PK ensures overwrite guarantee (most recent wins).
//
// Example:
//
//	repo.Upsert(ctx, &db.Swipe{SwiperID: 1, SwipeeID: 2, Action: db.ActionLike})
func (r *SwipeRepository) Upsert(ctx context.Context, s *db.Swipe) error {
	return r.UpsertMany(ctx, []db.Swipe{*s})
}

// UpsertMany writes several swipes in a single statement.
func (r *SwipeRepository) UpsertMany(ctx context.Context, swipes []db.Swipe) error {
	if len(swipes) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swipee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "reason", "updated_at"}),
		}).
		Create(&swipes).Error
	if err != nil {
		return fmt.Errorf("upsert swipes: %w", err)
	}
	return nil
}

// Get returns the current swipe swiper -> swipee. Missing rows wrap ErrNotFound.
func (r *SwipeRepository) Get(ctx context.Context, swiperID, swipeeID uint64) (*db.Swipe, error) {
	var s db.Swipe
	err := r.db.WithContext(ctx).
		First(&s, "swiper_id = ? AND swipee_id = ?", swiperID, swipeeID).Error
	if err != nil {
		return nil, fmt.Errorf("get swipe %d->%d: %w", swiperID, swipeeID, err)
	}
	return &s, nil
}

// HasLiked checks whether swiper's current decision about swipee is a like.
//
// Used as the reciprocity check in RecordDecision.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *SwipeRepository) HasLiked(ctx context.Context, swiperID, swipeeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.swiper_id = ? AND s.swipee_id = ? AND s.action = ?", swiperID, swipeeID, db.ActionLike).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("has liked %d->%d: %w", swiperID, swipeeID, err)
	}
	return count > 0, nil
}

// GetLikers returns the swipes of users who liked the given user.
//
// Behavior:
//   - Only swipes where swipee_id = X and action = like are returned.
//   - Excludes users that X explicitly disliked.
//   - Ordered by updated_at DESC, swiper_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, 42, nil, 5) // first 5 people who liked user 42
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	return r.pageLikers(ctx, r.likersQuery(ctx, userID), paginationToken, limit)
}

// GetNewLikers returns users who liked the given user and have not been liked back.
//
// Behavior:
//   - Same as GetLikers, minus pairs where X already liked the swiper.
//
// Example:
//
//	repo.GetNewLikers(ctx, 42, nil, 5)
func (r *SwipeRepository) GetNewLikers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	// subquery to exclude mutual likes
	likedBack := r.db.
		Table("swipes").
		Select("1").
		Where("swiper_id = s.swipee_id AND swipee_id = s.swiper_id AND action = ?", db.ActionLike)

	query := r.likersQuery(ctx, userID).Where("NOT EXISTS (?)", likedBack)
	return r.pageLikers(ctx, query, paginationToken, limit)
}

// CountLikers returns how many users liked the given user.
// Used in conjunction with Redis cache (DB is fallback).
//
// Example:
//
//	repo.CountLikers(ctx, 42) // -> 123
func (r *SwipeRepository) CountLikers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	if err := r.likersQuery(ctx, userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count likers of %d: %w", userID, err)
	}
	return count, nil
}

func (r *SwipeRepository) likersQuery(ctx context.Context, userID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.swipee_id = ? AND s.action = ?", userID, db.ActionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.swiper_id = ?
				  AND s2.swipee_id = s.swiper_id
				  AND s2.action = ?
			)`, userID, db.ActionDislike)
}

func (r *SwipeRepository) pageLikers(
	ctx context.Context,
	query *gorm.DB,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query = query.
		Select("s.*").
		Order("s.updated_at DESC, s.swiper_id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.UpdatedUnix).UTC()
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.swiper_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var swipes []db.Swipe
	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, fmt.Errorf("list likers: %w", err)
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, err := pagination.Encode(pagination.Cursor{
			UserID:      last.SwiperID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}
