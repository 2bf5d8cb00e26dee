package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestMatchDelete_StorageFailureMapsToInternal(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := repository.NewMatchRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `matches` WHERE id = ?")).
		WithArgs("m-1").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.Delete(context.Background(), "m-1")
	require.Error(t, err)
	assert.Equal(t, codes.Internal, svcErr.Code(err))
	assert.Equal(t, "internal error", svcErr.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwipeUpsert_StorageFailure(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := repository.NewSwipeRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `swipes`")).
		WillReturnError(errors.New("deadlock found"))

	err := repo.Upsert(context.Background(), &db.Swipe{SwiperID: 1, SwipeeID: 2, Action: db.ActionLike})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert swipes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUser_NotFoundMapsToNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := repository.NewUserRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, svcErr.Code(err))
}
