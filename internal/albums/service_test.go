package albums

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/photo-share/cache"
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

// recordingStore 记录 DeleteMany 调用
type recordingStore struct {
	*storage.MemoryStorage

	mu        sync.Mutex
	deletes   [][]string
	deleteErr error
}

func (s *recordingStore) DeleteMany(ctx context.Context, keys []string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, append([]string(nil), keys...))
	s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStorage.DeleteMany(ctx, keys)
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recordingStore) {
	t.Helper()

	db := testutil.NewDB(t)
	store := &recordingStore{MemoryStorage: storage.NewMemoryStorage(nil)}
	mem, err := cache.NewMemoryCache(cache.DefaultMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	svc := NewService(Deps{
		DB:       db,
		Albums:   albumsrepo.NewRepository(db),
		Photos:   photosrepo.NewRepository(db),
		Comments: commentsrepo.NewRepository(db),
		Store:    store,
		Cache:    cache.NewHelper(mem, cache.HelperConfig{ShareTokenTTL: time.Minute}),
		BaseURL:  "http://photos.test",
	})
	return svc, db, store
}

func putObjects(t *testing.T, store *recordingStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, store.Put(context.Background(), k, []byte(k), "image/jpeg"))
	}
}

func TestCreateAlbum(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateAlbum(ctx, 1, "  Trip  ")
	require.NoError(t, err)
	assert.Equal(t, "Trip", a.Name)
	assert.NotEmpty(t, a.ShareToken)

	b, err := svc.CreateAlbum(ctx, 1, "Trip")
	require.NoError(t, err)
	assert.NotEqual(t, a.ShareToken, b.ShareToken)

	_, err = svc.CreateAlbum(ctx, 1, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetAlbumsForUser_OnlyOwn(t *testing.T) {
	svc, db, _ := newTestService(t)

	mine := testutil.CreateAlbum(t, db, 1, "mine")
	empty := testutil.CreateAlbum(t, db, 1, "empty")
	theirs := testutil.CreateAlbum(t, db, 2, "theirs")
	testutil.CreatePhoto(t, db, mine.ID, "thumb_1", "")
	testutil.CreatePhoto(t, db, mine.ID, "thumb_2", "")
	testutil.CreatePhoto(t, db, theirs.ID, "thumb_3", "")

	albums, err := svc.GetAlbumsForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, albums, 2)

	counts := map[uint]int64{}
	for _, a := range albums {
		assert.Equal(t, uint(1), a.UserID)
		counts[a.ID] = a.PhotoCount
	}
	assert.Equal(t, map[uint]int64{mine.ID: 2, empty.ID: 0}, counts)
}

func TestGetAlbumByShareToken(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	album := testutil.CreateAlbum(t, db, 1, "Trip")

	got, err := svc.GetAlbumByShareToken(ctx, album.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, album.ID, got.ID)

	// 第二次走缓存
	got, err = svc.GetAlbumByShareToken(ctx, album.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, album.ID, got.ID)

	_, err = svc.GetAlbumByShareToken(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.GetAlbumByShareToken(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.GetAlbumByShareToken(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetShareLink(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	album := testutil.CreateAlbum(t, db, 1, "Trip")

	link, err := svc.GetShareLink(ctx, album.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "http://photos.test/api/public/album/"+album.ShareToken, link)

	_, err = svc.GetShareLink(ctx, album.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.GetShareLink(ctx, 999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAlbum_Cascade(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	album := testutil.CreateAlbum(t, db, 1, "Trip")
	other := testutil.CreateAlbum(t, db, 1, "Other")

	p1 := testutil.CreatePhoto(t, db, album.ID, "thumb_1", "analysis_1")
	p2 := testutil.CreatePhoto(t, db, album.ID, "thumb_2", "")
	require.NoError(t, db.Model(p2).Update("final_storage_key", "final_2").Error)
	keep := testutil.CreatePhoto(t, db, other.ID, "thumb_keep", "")

	testutil.CreateComment(t, db, p1.ID, "guest", "nice")
	testutil.CreateComment(t, db, p2.ID, "guest", "wow")
	testutil.CreateComment(t, db, keep.ID, "guest", "stays")

	putObjects(t, store, "thumb_1", "analysis_1", "thumb_2", "final_2", "thumb_keep")

	require.NoError(t, svc.DeleteAlbum(ctx, album.ID, 1))

	require.Len(t, store.deletes, 1, "exactly one batch delete")
	assert.ElementsMatch(t, []string{"thumb_1", "analysis_1", "thumb_2", "final_2"}, store.deletes[0])
	assert.False(t, store.Has("thumb_1"))
	assert.True(t, store.Has("thumb_keep"))

	var photos, comments, albums int64
	db.Model(&models.Photo{}).Where("album_id = ?", album.ID).Count(&photos)
	db.Model(&models.Comment{}).Where("photo_id IN ?", []uint{p1.ID, p2.ID}).Count(&comments)
	db.Model(&models.Album{}).Where("id = ?", album.ID).Count(&albums)
	assert.Zero(t, photos)
	assert.Zero(t, comments)
	assert.Zero(t, albums)

	var remaining int64
	db.Model(&models.Comment{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)

	_, err := svc.GetAlbumByShareToken(ctx, album.ShareToken)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAlbum_EmptySkipsObjectStore(t *testing.T) {
	svc, db, store := newTestService(t)
	album := testutil.CreateAlbum(t, db, 1, "Empty")

	require.NoError(t, svc.DeleteAlbum(context.Background(), album.ID, 1))
	assert.Empty(t, store.deletes)
}

func TestDeleteAlbum_Errors(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	album := testutil.CreateAlbum(t, db, 1, "Trip")
	testutil.CreatePhoto(t, db, album.ID, "thumb_1", "")

	err := svc.DeleteAlbum(ctx, 999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.DeleteAlbum(ctx, album.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, store.deletes)

	store.deleteErr = errors.New("bucket unavailable")
	err = svc.DeleteAlbum(ctx, album.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrExternal)

	var photos int64
	db.Model(&models.Photo{}).Where("album_id = ?", album.ID).Count(&photos)
	assert.Equal(t, int64(1), photos, "rows stay when the object store fails")
}

func TestDeleteAlbum_RowFailureRollsBackWithoutRestoringObjects(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	album := testutil.CreateAlbum(t, db, 1, "Trip")
	p := testutil.CreatePhoto(t, db, album.ID, "thumb_1", "analysis_1")
	testutil.CreateComment(t, db, p.ID, "guest", "nice")
	putObjects(t, store, "thumb_1", "analysis_1")

	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_album_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "albums" {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	}))

	err := svc.DeleteAlbum(ctx, album.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrPersistence)

	require.Len(t, store.deletes, 1, "exactly one batch delete")
	assert.ElementsMatch(t, []string{"thumb_1", "analysis_1"}, store.deletes[0])
	assert.False(t, store.Has("thumb_1"), "deleted objects are not restored")
	assert.False(t, store.Has("analysis_1"))

	var photos, comments, albums int64
	db.Model(&models.Photo{}).Where("album_id = ?", album.ID).Count(&photos)
	db.Model(&models.Comment{}).Where("photo_id = ?", p.ID).Count(&comments)
	db.Model(&models.Album{}).Where("id = ?", album.ID).Count(&albums)
	assert.Equal(t, int64(1), photos)
	assert.Equal(t, int64(1), comments)
	assert.Equal(t, int64(1), albums)
}

func TestExportLikedCSV(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	album := testutil.CreateAlbum(t, db, 1, "Trip")
	liked := testutil.CreatePhoto(t, db, album.ID, "thumb_a", "")
	testutil.CreatePhoto(t, db, album.ID, "thumb_b", "")
	require.NoError(t, db.Model(liked).Update("liked", true).Error)

	out, err := svc.ExportLikedCSV(ctx, album.ID, 1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,originalFileName,localCategory", lines[0])
	assert.Contains(t, lines[1], "thumb_a.jpg")

	_, err = svc.ExportLikedCSV(ctx, album.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
