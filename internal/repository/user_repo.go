package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/blinder/internal/db"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// profileColumns are the columns a profile update may touch.
var profileColumns = []string{
	"university", "university_location", "birthdate", "zodiac_sign",
	"gender", "gender_preference", "height", "relationship_goal", "likes",
	"personal_values", "alcohol", "smoking", "religion", "political_view",
	"favorite_food", "about", "updated_at",
}

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user and fills in its assigned ID.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID loads a single user. Missing rows wrap ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// FindByEmail resolves the identity carried by a bearer token.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// FindByIDs loads every existing user among ids in one query.
// Missing ids are simply absent from the result.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]db.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// FindCandidates returns up to limit users matching every scope, ordered by id.
//
// Example:
//
//	repo.FindCandidates(ctx, 10, ExcludeSelf(1), SameLocation("X"))
func (r *UserRepository) FindCandidates(
	ctx context.Context,
	limit int,
	scopes ...func(*gorm.DB) *gorm.DB,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Scopes(scopes...).
		Order("users.id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return users, nil
}

// UpdateProfile overwrites the editable profile columns of user id with the
// values from u. Identity fields (email, password hash) are never touched.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint64, u *db.User) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{ID: id}).
		Select(profileColumns).
		Updates(u)
	if res.Error != nil {
		return fmt.Errorf("update profile %d: %w", id, res.Error)
	}
	return nil
}
