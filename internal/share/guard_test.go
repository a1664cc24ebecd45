package share

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/photo-share/database/models"
	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// repoResolver 直接查库的解析器
type repoResolver struct {
	repo *albumsrepo.Repository
}

func (r repoResolver) GetAlbumByShareToken(ctx context.Context, token string) (*models.Album, error) {
	album, err := r.repo.FindByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, apperr.NotFound("test", "album not found")
	}
	return album, nil
}

type brokenMembership struct{}

func (brokenMembership) BelongsToAlbum(context.Context, uint, uint) (bool, error) {
	return false, errors.New("db down")
}

func TestIsPhotoInSharedAlbum(t *testing.T) {
	db := testutil.NewDB(t)
	guard := NewGuard(repoResolver{albumsrepo.NewRepository(db)}, photosrepo.NewRepository(db))
	ctx := context.Background()

	a := testutil.CreateAlbum(t, db, 1, "A")
	b := testutil.CreateAlbum(t, db, 1, "B")
	inA := testutil.CreatePhoto(t, db, a.ID, "thumb_a", "")
	inB := testutil.CreatePhoto(t, db, b.ID, "thumb_b", "")

	assert.True(t, guard.IsPhotoInSharedAlbum(ctx, a.ShareToken, inA.ID))
	assert.False(t, guard.IsPhotoInSharedAlbum(ctx, a.ShareToken, inB.ID))
	assert.False(t, guard.IsPhotoInSharedAlbum(ctx, a.ShareToken, 9999))
	assert.False(t, guard.IsPhotoInSharedAlbum(ctx, "missing-token", inA.ID))
	assert.False(t, guard.IsPhotoInSharedAlbum(ctx, "", inA.ID))
}

func TestIsPhotoInSharedAlbum_FailsClosed(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateAlbum(t, db, 1, "A")
	guard := NewGuard(repoResolver{albumsrepo.NewRepository(db)}, brokenMembership{})

	assert.NotPanics(t, func() {
		assert.False(t, guard.IsPhotoInSharedAlbum(context.Background(), a.ShareToken, 1))
	})
}
