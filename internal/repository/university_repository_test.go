package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/repository"
	"github.com/oggyb/blinder/internal/testutil"
)

func TestUniversityRepository_ListUniversities(t *testing.T) {
	dbase := testutil.NewTestDB(t)
	repo := repository.NewUniversityRepository(dbase)

	got, err := repo.ListUniversities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, dbase.Create(&[]db.University{
		{Name: "ODTÜ", Location: "Ankara"},
		{Name: "Boğaziçi", Location: "İstanbul"},
		{Name: "Bilkent", Location: "Ankara"},
	}).Error)

	got, err = repo.ListUniversities(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Bilkent", got[0].Name)
	assert.Equal(t, "ODTÜ", got[1].Name)
	assert.Equal(t, "İstanbul", got[2].Location)

	err = dbase.Create(&db.University{Name: "ODTÜ", Location: "Ankara"}).Error
	assert.Error(t, err, "university names are unique")
}
