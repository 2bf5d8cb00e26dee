package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/blinder/internal/db"
)

// UniversityRepository reads the campus catalog.
type UniversityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(database *gorm.DB) *UniversityRepository {
	return &UniversityRepository{db: database}
}

// ListUniversities returns every university ordered by location, then name.
func (r *UniversityRepository) ListUniversities(ctx context.Context) ([]db.University, error) {
	var out []db.University
	if err := r.db.WithContext(ctx).Order("location ASC, name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return out, nil
}
