package repository

import "gorm.io/gorm"

// Candidate predicates. Each one is a gorm scope over the users table and
// they are combined conjunctively by FindCandidates.

// ExcludeSelf drops the requesting user.
func ExcludeSelf(userID uint64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.id <> ?", userID)
	}
}

// ExcludeSwipedBy drops everyone userID has already swiped on, either action.
// The swipe log is read live as a subquery.
func ExcludeSwipedBy(userID uint64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		swiped := tx.Session(&gorm.Session{NewDB: true}).
			Table("swipes").
			Select("swipee_id").
			Where("swiper_id = ?", userID)
		return tx.Where("users.id NOT IN (?)", swiped)
	}
}

// GenderIn keeps candidates whose own gender is one of genders.
func GenderIn(genders ...string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.gender IN ?", genders)
	}
}

// SameLocation keeps candidates at exactly the given university location.
func SameLocation(location string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.university_location = ?", location)
	}
}
