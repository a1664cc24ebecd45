package base

import (
	"context"
	"testing"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository[models.Album](db)
	ctx := context.Background()

	album := &models.Album{UserID: 7, Name: "Trip", ShareToken: "t1"}
	require.NoError(t, repo.Create(ctx, album))
	require.NotZero(t, album.ID)

	got, err := repo.GetByID(ctx, album.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Trip", got.Name)

	got.Name = "Trip 2"
	require.NoError(t, repo.Update(ctx, got))

	found, err := repo.FirstByCondition(ctx, "share_token = ?", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Trip 2", found.Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, album.ID))
	exists, err := repo.Exists(ctx, album.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_MissingReturnsNil(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository[models.Album](db)

	got, err := repo.GetByID(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, got)

	first, err := repo.FirstByCondition(context.Background(), "share_token = ?", "nope")
	assert.NoError(t, err)
	assert.Nil(t, first)
}
