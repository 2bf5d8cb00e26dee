package explore

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/cache"
	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/observability"
	"github.com/oggyb/blinder/internal/repository"
	"github.com/oggyb/blinder/internal/service"
	"github.com/oggyb/blinder/internal/utils/pagination"
)

const (
	// CandidateLimit caps a single candidate feed.
	CandidateLimit = 10
	// LikedYouPageSize is the page size of the liked-you lists.
	LikedYouPageSize = 5
)

// Service implements candidate selection and the "who liked you" views.
// It is read-only with respect to the swipe log.
type Service struct {
	log    *slog.Logger
	users  *repository.UserRepository
	swipes *repository.SwipeRepository
	cache  *cache.RedisCache
}

// NewExploreService creates a new Explore service with dependencies from AppContext.
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		log:    appCtx.Logger,
		users:  appCtx.Repos.Users,
		swipes: appCtx.Repos.Swipes,
		cache:  appCtx.RedisCache,
	}
}

// GenderFilter turns a gender preference into the set of acceptable candidate genders.
func GenderFilter(preference string) []string {
	switch p := db.NormalizeGender(preference); p {
	case db.PreferenceEither:
		return []string{db.GenderMale, db.GenderFemale}
	default:
		return []string{p}
	}
}

// CandidateScopes is the conjunction of predicates a candidate must satisfy for u.
func CandidateScopes(u *db.User) []func(*gorm.DB) *gorm.DB {
	return []func(*gorm.DB) *gorm.DB{
		repository.ExcludeSelf(u.ID),
		repository.ExcludeSwipedBy(u.ID),
		repository.GenderIn(GenderFilter(u.GenderPreference)...),
		repository.SameLocation(u.UniversityLocation),
	}
}

// GetCandidates returns up to CandidateLimit users the requester has not swiped on yet.
//
// Behavior:
//   - Excludes self and every user already swiped (like or dislike).
//   - Candidate gender must match the requester's preference ("İkisi de" accepts both).
//   - Candidate must share the requester's university location.
//   - Ordered by user id for stable output; reflects live state on every call.
//
// Example:
//
//	svc.GetCandidates(ctx, 1)
func (s *Service) GetCandidates(ctx context.Context, userID uint64) ([]db.PublicProfile, error) {
	s.log.Debug("GetCandidates called", "user_id", userID)

	requester, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		s.log.Error("FindByID failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	users, err := s.users.FindCandidates(ctx, CandidateLimit, CandidateScopes(requester)...)
	if err != nil {
		s.log.Error("FindCandidates failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	out := make([]db.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}

	s.log.Debug("GetCandidates result", "user_id", userID, "count", len(out))
	return out, nil
}

// Liker is a single "liked you" entry.
type Liker struct {
	UserID string `json:"user_id"`
	// Timestamp is the decision time in unix milliseconds.
	Timestamp uint64 `json:"timestamp"`
}

// LikedYouPage is one page of likers plus the token for the next page.
type LikedYouPage struct {
	Likers              []Liker `json:"likers"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

// ListLikedYou returns users who liked userID, minus those userID disliked.
//
// Example:
//
//	svc.ListLikedYou(ctx, 42, nil)
func (s *Service) ListLikedYou(ctx context.Context, userID uint64, token *string) (*LikedYouPage, error) {
	s.log.Debug("ListLikedYou called", "user_id", userID)

	swipes, next, err := s.swipes.GetLikers(ctx, userID, token, LikedYouPageSize)
	if err != nil {
		return nil, s.pageError("GetLikers", err)
	}
	return toPage(swipes, next), nil
}

// ListNewLikedYou is ListLikedYou minus users userID already liked back.
//
// Example:
//
//	svc.ListNewLikedYou(ctx, 42, nil)
func (s *Service) ListNewLikedYou(ctx context.Context, userID uint64, token *string) (*LikedYouPage, error) {
	s.log.Debug("ListNewLikedYou called", "user_id", userID)

	swipes, next, err := s.swipes.GetNewLikers(ctx, userID, token, LikedYouPageSize)
	if err != nil {
		return nil, s.pageError("GetNewLikers", err)
	}
	return toPage(swipes, next), nil
}

// CountLikedYou returns how many users liked userID.
// Cache-first strategy:
//  1. Attempts to read from Redis (blinder:likes:count:userID).
//  2. If cache miss or cache failure, falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with a 1h TTL.
//
// Example:
//
//	svc.CountLikedYou(ctx, 42)
func (s *Service) CountLikedYou(ctx context.Context, userID uint64) (uint64, error) {
	s.log.Debug("CountLikedYou called", "user_id", userID)

	// try cache first
	n, ok, err := s.cache.GetLikeCount(ctx, userID)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		s.log.Warn("like count cache read failed", "user_id", userID, "err", err)
	} else if ok {
		return uint64(n), nil
	}

	// fallback: DB
	count, err := s.swipes.CountLikers(ctx, userID)
	if err != nil {
		s.log.Error("CountLikers failed", "user_id", userID, "err", err)
		return 0, svcErr.Map(err)
	}

	if err := s.cache.SetLikeCount(ctx, userID, count); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		s.log.Warn("like count cache write failed", "user_id", userID, "err", err)
	}
	return uint64(count), nil
}

func (s *Service) pageError(op string, err error) error {
	if errors.Is(err, pagination.ErrInvalidToken) {
		return svcErr.InvalidArgument(err.Error())
	}
	s.log.Error(op+" failed", "err", err)
	return svcErr.Map(err)
}

func toPage(swipes []db.Swipe, next *string) *LikedYouPage {
	page := &LikedYouPage{Likers: make([]Liker, 0, len(swipes)), NextPaginationToken: next}
	for _, sw := range swipes {
		page.Likers = append(page.Likers, Liker{
			UserID:    service.FormatID(sw.SwiperID),
			Timestamp: uint64(sw.UpdatedAt.UnixMilli()),
		})
	}
	return page
}
