package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/observability"
	"github.com/oggyb/blinder/internal/repository"
	"github.com/oggyb/blinder/internal/service"
)

// UserStore is the user lookup the engine needs.
type UserStore interface {
	FindByID(ctx context.Context, id uint64) (*db.User, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]db.User, error)
}

// SwipeStore is the swipe log. The engine is its only writer.
type SwipeStore interface {
	Upsert(ctx context.Context, s *db.Swipe) error
	UpsertMany(ctx context.Context, swipes []db.Swipe) error
	HasLiked(ctx context.Context, swiperID, swipeeID uint64) (bool, error)
}

// MatchStore persists matches keyed by their unordered pair.
type MatchStore interface {
	CreateIfAbsent(ctx context.Context, m *db.Match) (*db.Match, bool, error)
	FindByID(ctx context.Context, id string) (*db.Match, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListForUser(ctx context.Context, userID uint64) ([]db.Match, error)
}

// LikeCache holds derived like counts that go stale on every decision.
type LikeCache interface {
	InvalidateLikeCount(ctx context.Context, userIDs ...uint64) error
}

// RoomCloser disconnects realtime listeners of a match.
type RoomCloser interface {
	CloseRoom(matchID string)
}

// Deps are the collaborators of an Engine. Now and NewID default to
// db.NowFunc and uuid.NewString.
type Deps struct {
	Users   UserStore
	Swipes  SwipeStore
	Matches MatchStore
	Cache   LikeCache
	Rooms   RoomCloser
	Logger  *slog.Logger
	Now     func() time.Time
	NewID   func() string
}

// Engine records swipe decisions and owns the match lifecycle.
type Engine struct {
	users   UserStore
	swipes  SwipeStore
	matches MatchStore
	cache   LikeCache
	rooms   RoomCloser
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewEngine builds an Engine from explicit dependencies.
func NewEngine(d Deps) *Engine {
	e := &Engine{
		users:   d.Users,
		swipes:  d.Swipes,
		matches: d.Matches,
		cache:   d.Cache,
		rooms:   d.Rooms,
		log:     d.Logger,
		now:     d.Now,
		newID:   d.NewID,
	}
	if e.now == nil {
		e.now = db.NowFunc
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// NewEngineFromApp wires an Engine against the shared repositories.
func NewEngineFromApp(appCtx *app.AppContext) *Engine {
	return NewEngine(Deps{
		Users:   appCtx.Repos.Users,
		Swipes:  appCtx.Repos.Swipes,
		Matches: appCtx.Repos.Matches,
		Cache:   appCtx.RedisCache,
		Rooms:   appCtx.Hub,
		Logger:  appCtx.Logger,
	})
}

// Decision is the outcome of RecordDecision.
type Decision struct {
	Matched bool   `json:"match"`
	MatchID string `json:"match_id,omitempty"`
}

// UnmatchResult reports whether the anti-resurface swipes were written.
type UnmatchResult struct {
	Partial bool `json:"partial"`
}

// MatchSummary is one entry of ListMatches.
type MatchSummary struct {
	MatchID            string    `json:"match_id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Picture            string    `json:"picture"`
	University         string    `json:"university"`
	UniversityLocation string    `json:"university_location"`
	Birthdate          string    `json:"birthdate"`
	MatchedAt          time.Time `json:"matched_at"`
}

// RecordDecision stores swiper's decision about swipee and creates the match
// when the like is reciprocated.
//
// Behavior:
//   - action must be like or dislike; swiper != swipee; swipee must exist.
//   - The swipe is upserted (most recent wins) with timestamp now.
//   - A like that finds swipee → swiper like creates the pair's match once,
//     via a conflict-ignoring insert on the canonical pair key.
//   - matched is true whenever the pair ends up matched, even if the match pre-existed.
//
// Example:
//
//	engine.RecordDecision(ctx, 1, 2, db.ActionLike)
func (e *Engine) RecordDecision(ctx context.Context, swiperID, swipeeID uint64, action string) (res *Decision, err error) {
	ctx, span := observability.StartSpan(ctx, "match.RecordDecision",
		attribute.Int64("swiper_id", int64(swiperID)),
		attribute.Int64("swipee_id", int64(swipeeID)),
		attribute.String("action", action),
	)
	defer func() { observability.EndSpan(span, err) }()

	e.log.Debug("RecordDecision called", "swiper", swiperID, "swipee", swipeeID, "action", action)

	if !db.ValidAction(action) {
		return nil, svcErr.InvalidArgument("action must be 'like' or 'dislike'")
	}
	if swiperID == swipeeID {
		return nil, svcErr.InvalidArgument("cannot swipe on yourself")
	}
	if _, err := e.users.FindByID(ctx, swipeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		e.log.Error("FindByID failed", "user_id", swipeeID, "err", err)
		return nil, svcErr.Map(err)
	}

	now := e.now()
	swipe := &db.Swipe{
		SwiperID:  swiperID,
		SwipeeID:  swipeeID,
		Action:    action,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.swipes.Upsert(ctx, swipe); err != nil {
		e.log.Error("swipe upsert failed", "swiper", swiperID, "swipee", swipeeID, "err", err)
		return nil, svcErr.Map(err)
	}
	observability.SwipesTotal.WithLabelValues(action).Inc()
	e.invalidateLikeCounts(ctx, swipeeID)

	if action == db.ActionDislike {
		return &Decision{Matched: false}, nil
	}

	// reciprocity check
	mutual, err := e.swipes.HasLiked(ctx, swipeeID, swiperID)
	if err != nil {
		e.log.Error("HasLiked failed", "swiper", swipeeID, "swipee", swiperID, "err", err)
		return nil, svcErr.Map(err)
	}
	if !mutual {
		return &Decision{Matched: false}, nil
	}

	m, created, err := e.matches.CreateIfAbsent(ctx, &db.Match{
		ID:        e.newID(),
		User1ID:   swiperID,
		User2ID:   swipeeID,
		PairKey:   db.PairKey(swiperID, swipeeID),
		MatchedAt: now,
	})
	if err != nil {
		e.log.Error("match create failed", "pair", db.PairKey(swiperID, swipeeID), "err", err)
		return nil, svcErr.Map(err)
	}
	if created {
		observability.MatchesCreatedTotal.Inc()
		e.log.Info("match created", "match_id", m.ID, "user1", m.User1ID, "user2", m.User2ID)
	}

	return &Decision{Matched: true, MatchID: m.ID}, nil
}

// Unmatch deletes a match and writes mutual dislikes so the pair never resurfaces.
//
// Behavior:
//   - matchID must be a UUID; the match must exist; userID must be a party.
//   - Deleting a match that vanished concurrently yields NotFound.
//   - If the swipe writes fail after the delete, the call still succeeds with
//     Partial set; nothing is rolled back.
//
// Example:
//
//	engine.Unmatch(ctx, 1, "7d6f...")
func (e *Engine) Unmatch(ctx context.Context, userID uint64, matchID string) (res *UnmatchResult, err error) {
	ctx, span := observability.StartSpan(ctx, "match.Unmatch",
		attribute.Int64("user_id", int64(userID)),
		attribute.String("match_id", matchID),
	)
	defer func() { observability.EndSpan(span, err) }()

	m, err := e.Authorize(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	other, _ := m.Other(userID)

	deleted, err := e.matches.Delete(ctx, matchID)
	if err != nil {
		e.log.Error("match delete failed", "match_id", matchID, "err", err)
		return nil, svcErr.Map(err)
	}
	if !deleted {
		return nil, svcErr.NotFound("match not found")
	}
	if e.rooms != nil {
		e.rooms.CloseRoom(matchID)
	}

	now := e.now()
	block := []db.Swipe{
		{SwiperID: userID, SwipeeID: other, Action: db.ActionDislike, Reason: db.ReasonUnmatch, CreatedAt: now, UpdatedAt: now},
		{SwiperID: other, SwipeeID: userID, Action: db.ActionDislike, Reason: db.ReasonUnmatch, CreatedAt: now, UpdatedAt: now},
	}
	if err := e.swipes.UpsertMany(ctx, block); err != nil {
		observability.UnmatchesTotal.WithLabelValues("partial").Inc()
		e.log.Warn("unmatch compensation failed; pair may resurface",
			"match_id", matchID, "user", userID, "other", other, "err", err)
		return &UnmatchResult{Partial: true}, nil
	}

	observability.UnmatchesTotal.WithLabelValues("ok").Inc()
	e.invalidateLikeCounts(ctx, userID, other)
	e.log.Info("match removed", "match_id", matchID, "by", userID)
	return &UnmatchResult{Partial: false}, nil
}

// ListMatches returns every match of userID with the counterpart's profile excerpt.
// Matches whose counterpart no longer exists are skipped and logged.
//
// Example:
//
//	engine.ListMatches(ctx, 1)
func (e *Engine) ListMatches(ctx context.Context, userID uint64) (res []MatchSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "match.ListMatches",
		attribute.Int64("user_id", int64(userID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := e.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		e.log.Error("FindByID failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	matches, err := e.matches.ListForUser(ctx, userID)
	if err != nil {
		e.log.Error("ListForUser failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	loader := newUserLoader(e.users)
	thunks := make([]func() (*db.User, error), len(matches))
	for i := range matches {
		other, _ := matches[i].Other(userID)
		thunks[i] = loader.Load(ctx, other)
	}

	out := make([]MatchSummary, 0, len(matches))
	for i, m := range matches {
		u, err := thunks[i]()
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				e.log.Warn("skipping match with missing counterpart", "match_id", m.ID, "user_id", userID)
				continue
			}
			e.log.Error("counterpart load failed", "match_id", m.ID, "err", err)
			return nil, svcErr.Map(err)
		}
		out = append(out, MatchSummary{
			MatchID:            m.ID,
			UserID:             service.FormatID(u.ID),
			Name:               u.Name,
			Picture:            u.Picture,
			University:         u.University,
			UniversityLocation: u.UniversityLocation,
			Birthdate:          u.Birthdate,
			MatchedAt:          m.MatchedAt.UTC(),
		})
	}
	return out, nil
}

// Authorize loads a match and checks that userID is one of its parties.
func (e *Engine) Authorize(ctx context.Context, userID uint64, matchID string) (*db.Match, error) {
	return Authorize(ctx, e.matches, userID, matchID)
}

// Authorize is the party check shared by every match-scoped operation.
func Authorize(ctx context.Context, matches MatchStore, userID uint64, matchID string) (*db.Match, error) {
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, svcErr.InvalidArgument("invalid match_id")
	}
	m, err := matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("match not found")
		}
		return nil, svcErr.Map(err)
	}
	if !m.HasUser(userID) {
		return nil, svcErr.PermissionDenied("you are not a party to this match")
	}
	return m, nil
}

func (e *Engine) invalidateLikeCounts(ctx context.Context, userIDs ...uint64) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateLikeCount(ctx, userIDs...); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("invalidate").Inc()
		e.log.Warn("like count invalidation failed", "users", userIDs, "err", err)
	}
}
