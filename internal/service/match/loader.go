package match

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/repository"
)

// newUserLoader batches counterpart lookups into a single IN query.
// Loaders are built per call so nothing is cached across requests.
func newUserLoader(users UserStore) *dataloader.Loader[uint64, *db.User] {
	return dataloader.NewBatchedLoader(
		userBatchFn(users),
		dataloader.WithWait[uint64, *db.User](2*time.Millisecond),
	)
}

func userBatchFn(users UserStore) dataloader.BatchFunc[uint64, *db.User] {
	return func(ctx context.Context, keys []uint64) []*dataloader.Result[*db.User] {
		results := make([]*dataloader.Result[*db.User], len(keys))

		found, err := users.FindByIDs(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[*db.User]{Error: err}
			}
			return results
		}

		byID := make(map[uint64]*db.User, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}

		for i, key := range keys {
			if u, ok := byID[key]; ok {
				results[i] = &dataloader.Result[*db.User]{Data: u}
				continue
			}
			results[i] = &dataloader.Result[*db.User]{
				Error: fmt.Errorf("user %d: %w", key, repository.ErrNotFound),
			}
		}
		return results
	}
}
