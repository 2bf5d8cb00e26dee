package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/repository"
	"github.com/oggyb/blinder/internal/testutil"
)

func newMatch(a, b uint64, at time.Time) *db.Match {
	return &db.Match{ID: uuid.NewString(), User1ID: a, User2ID: b, MatchedAt: at}
}

func TestCreateIfAbsent_OncePerPair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(testutil.NewTestDB(t))

	first, created, err := repo.CreateIfAbsent(ctx, newMatch(1, 2, db.NowFunc()))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "1:2", first.PairKey)

	// reversed order hits the same pair key
	second, created, err := repo.CreateIfAbsent(ctx, newMatch(2, 1, db.NowFunc()))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateIfAbsent_Concurrent(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]struct{}{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := uint64(5), uint64(6)
			if i%2 == 0 {
				a, b = b, a
			}
			m, ok, err := repo.CreateIfAbsent(ctx, newMatch(a, b, db.NowFunc()))
			assert.NoError(t, err)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[m.ID] = struct{}{}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	var count int64
	dbase.Model(&db.Match{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMatchDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(testutil.NewTestDB(t))

	m, _, err := repo.CreateIfAbsent(ctx, newMatch(1, 2, db.NowFunc()))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListForUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(testutil.NewTestDB(t))

	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	older, _, err := repo.CreateIfAbsent(ctx, newMatch(1, 2, t0))
	require.NoError(t, err)
	newer, _, err := repo.CreateIfAbsent(ctx, newMatch(3, 1, t0.Add(time.Hour)))
	require.NoError(t, err)
	_, _, err = repo.CreateIfAbsent(ctx, newMatch(3, 4, t0))
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, newer.ID, matches[0].ID)
	assert.Equal(t, older.ID, matches[1].ID)
}
