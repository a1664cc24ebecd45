package photos

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/photo-share/database/models"
	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	commentsrepo "github.com/anoixa/photo-share/database/repo/comments"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/testutil"
	"github.com/anoixa/photo-share/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type failingDeleteStore struct {
	*storage.MemoryStorage
	err error
}

func (s *failingDeleteStore) DeleteMany(ctx context.Context, keys []string) error {
	if s.err != nil {
		return s.err
	}
	return s.MemoryStorage.DeleteMany(ctx, keys)
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	store *failingDeleteStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	signer := storage.NewURLSigner("secret", "http://photos.test")
	store := &failingDeleteStore{MemoryStorage: storage.NewMemoryStorage(signer)}
	svc := NewService(Deps{
		DB:         db,
		Albums:     albumsrepo.NewRepository(db),
		Photos:     photosrepo.NewRepository(db),
		Comments:   commentsrepo.NewRepository(db),
		Store:      store,
		PresignTTL: 10 * time.Minute,
	})
	return &fixture{svc: svc, db: db, store: store}
}

func (f *fixture) put(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, f.store.Put(context.Background(), k, []byte("data-"+k), "image/jpeg"))
	}
}

func TestUploadPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")

	photo, err := f.svc.UploadPreview(ctx, album.ID, 1, pngBytes, "beach day.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(photo.StorageKey, "thumb_"))
	assert.False(t, photo.CloudAnalyzed)
	assert.False(t, photo.Finalized)
	assert.True(t, f.store.Has(photo.StorageKey))

	_, err = f.svc.UploadPreview(ctx, album.ID, 1, []byte("plain text"), "a.txt")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.UploadPreview(ctx, album.ID, 2, pngBytes, "x.png")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.UploadPreview(ctx, 999, 1, pngBytes, "x.png")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReplaceWithFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "analysis_1")
	f.put(t, "thumb_1", "analysis_1")

	got, err := f.svc.ReplaceWithFinalized(ctx, p.ID, 1, pngBytes, "final.png")
	require.NoError(t, err)

	assert.True(t, got.Finalized)
	assert.Empty(t, got.StorageKey)
	assert.Empty(t, got.AnalysisImageKey)
	assert.True(t, strings.HasPrefix(got.FinalStorageKey, "final_"))

	_, err = f.store.Get(ctx, "thumb_1")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	_, err = f.store.Get(ctx, "analysis_1")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	assert.True(t, f.store.Has(got.FinalStorageKey))

	// 再次定稿会替换之前的定稿对象
	again, err := f.svc.ReplaceWithFinalized(ctx, p.ID, 1, pngBytes, "final2.png")
	require.NoError(t, err)
	assert.False(t, f.store.Has(got.FinalStorageKey))
	assert.True(t, f.store.Has(again.FinalStorageKey))
}

func TestReplaceWithFinalized_Forbidden(t *testing.T) {
	f := newFixture(t)
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")
	f.put(t, "thumb_1")

	_, err := f.svc.ReplaceWithFinalized(context.Background(), p.ID, 2, pngBytes, "x.png")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.True(t, f.store.Has("thumb_1"))
}

func TestReplaceWithFinalized_DeleteFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")
	f.put(t, "thumb_1")
	f.store.err = errors.New("unavailable")

	_, err := f.svc.ReplaceWithFinalized(context.Background(), p.ID, 1, pngBytes, "x.png")
	assert.ErrorIs(t, err, apperr.ErrExternal)

	var got models.Photo
	require.NoError(t, f.db.First(&got, p.ID).Error)
	assert.Equal(t, "thumb_1", got.StorageKey)
	assert.False(t, got.Finalized)
	assert.Equal(t, 1, f.store.Len(), "new final object discarded")
}

func TestDeletePhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "analysis_1")
	testutil.CreateComment(t, f.db, p.ID, "guest", "hi")
	f.put(t, "thumb_1", "analysis_1")

	require.NoError(t, f.svc.DeletePhoto(ctx, p.ID, 1))
	assert.Zero(t, f.store.Len())

	var count int64
	f.db.Model(&models.Photo{}).Where("id = ?", p.ID).Count(&count)
	assert.Zero(t, count)
	f.db.Model(&models.Comment{}).Where("photo_id = ?", p.ID).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.svc.DeletePhoto(ctx, p.ID, 1), apperr.ErrNotFound)
}

func TestDeletePhoto_FailClosed(t *testing.T) {
	f := newFixture(t)
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")
	f.store.err = errors.New("unavailable")

	err := f.svc.DeletePhoto(context.Background(), p.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrExternal)

	var count int64
	f.db.Model(&models.Photo{}).Where("id = ?", p.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListPhotos_SignedURLs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p1 := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "analysis_1")
	testutil.CreatePhoto(t, f.db, album.ID, "thumb_2", "")
	require.NoError(t, f.db.Model(p1).Update("liked", true).Error)

	views, err := f.svc.ListPhotosForAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Contains(t, views[0].StorageURL, "/objects/thumb_1?expires=")
	assert.Contains(t, views[0].PreviewURL, "/objects/analysis_1?")
	assert.Empty(t, views[0].FinalStorageURL)
	assert.Empty(t, views[1].PreviewURL)

	liked, err := f.svc.ListLikedPhotosForAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, p1.ID, liked[0].ID)

}

func TestListPhotos_FreshURLPerResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")

	first, err := f.svc.ListPhotosForAlbum(ctx, album.ID)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	second, err := f.svc.ListPhotosForAlbum(ctx, album.ID)
	require.NoError(t, err)

	expiresOf := func(raw string) int64 {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		n, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
		require.NoError(t, err)
		return n
	}
	assert.Greater(t, expiresOf(second[0].StorageURL), expiresOf(first[0].StorageURL))
	assert.NotEqual(t, first[0].StorageURL, second[0].StorageURL)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")

	got, err := f.svc.ToggleLike(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Liked)

	got, err = f.svc.ToggleLike(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	_, err = f.svc.ToggleLike(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	p := testutil.CreatePhoto(t, f.db, album.ID, "thumb_1", "")

	c, err := f.svc.AddComment(ctx, p.ID, " Ann ", "lovely")
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.CommenterName)

	_, err = f.svc.AddComment(ctx, p.ID, "Ann", "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.AddComment(ctx, 999, "Ann", "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := f.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lovely", list[0].Content)
}

func TestSyncArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, f.db, 1, "Trip")
	encoded := base64.StdEncoding.EncodeToString(pngBytes)

	items := []ArchiveItem{
		{OriginalFileName: "a.png", LocalCategory: "beach", ThumbnailBase64: encoded, PreviewBase64: "data:image/png;base64," + encoded},
		{OriginalFileName: "broken.png", ThumbnailBase64: "!!not-base64!!"},
		{OriginalFileName: "thumb-only.png", ThumbnailBase64: encoded},
	}

	saved, err := f.svc.SyncArchives(ctx, album.ID, 1, items)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.True(t, strings.HasPrefix(saved[0].StorageKey, "thumb_"))
	assert.True(t, strings.HasPrefix(saved[0].AnalysisImageKey, "analysis_"))
	assert.Equal(t, "beach", saved[0].LocalCategory)
	assert.Empty(t, saved[1].AnalysisImageKey)
	assert.Equal(t, 3, f.store.Len())

	_, err = f.svc.SyncArchives(ctx, album.ID, 2, items)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.SyncArchives(ctx, 999, 1, items)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
