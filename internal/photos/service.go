// Package photos 照片生命周期：预览上传、定稿替换、删除、喜欢与评论
package photos

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/models"
	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	commentsrepo "github.com/anoixa/photo-share/database/repo/comments"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/generator"
	"github.com/anoixa/photo-share/utils/validator"
	"gorm.io/gorm"
)

const defaultPresignConcurrency = 8

// Deps 照片服务依赖
type Deps struct {
	DB                 *gorm.DB
	Albums             *albumsrepo.Repository
	Photos             *photosrepo.Repository
	Comments           *commentsrepo.Repository
	Store              storage.Provider
	PresignTTL         time.Duration
	PresignConcurrency int
}

// Service 照片服务
type Service struct {
	db       *gorm.DB
	albums   *albumsrepo.Repository
	photos   *photosrepo.Repository
	comments *commentsrepo.Repository
	store    storage.Provider

	presignTTL         time.Duration
	presignConcurrency int
}

// NewService 创建照片服务
func NewService(d Deps) *Service {
	if d.PresignTTL <= 0 {
		d.PresignTTL = 15 * time.Minute
	}
	if d.PresignConcurrency <= 0 {
		d.PresignConcurrency = defaultPresignConcurrency
	}
	return &Service{
		db:                 d.DB,
		albums:             d.Albums,
		photos:             d.Photos,
		comments:           d.Comments,
		store:              d.Store,
		presignTTL:         d.PresignTTL,
		presignConcurrency: d.PresignConcurrency,
	}
}

// requireAlbumOwner 校验相册存在且属于 userID
func (s *Service) requireAlbumOwner(ctx context.Context, op string, albumID, userID uint) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if album == nil {
		return nil, apperr.NotFound(op, "album not found")
	}
	if !album.IsOwnedBy(userID) {
		return nil, apperr.Forbidden(op, "not the owner of this album")
	}
	return album, nil
}

// GetPhotoForOwner 获取照片并校验其相册所有者
func (s *Service) GetPhotoForOwner(ctx context.Context, photoID, userID uint) (*models.Photo, error) {
	photo, err := s.photos.GetWithAlbum(ctx, photoID)
	if err != nil {
		return nil, apperr.Persistence("photos.Get", err)
	}
	if photo == nil || photo.Album == nil {
		return nil, apperr.NotFound("photos.Get", "photo not found")
	}
	if !photo.Album.IsOwnedBy(userID) {
		return nil, apperr.Forbidden("photos.Get", "not the owner of this photo")
	}
	return photo, nil
}

// detectImage 校验上传内容为图片，返回 MIME 类型
func detectImage(op string, data []byte) (string, error) {
	ok, mimeType := validator.IsImageBytes(data)
	if !ok {
		return "", apperr.Validation(op, "file is not a supported image")
	}
	return mimeType, nil
}

// UploadPreview 上传预览层对象并创建照片记录
func (s *Service) UploadPreview(ctx context.Context, albumID, userID uint, data []byte, filename string) (*models.Photo, error) {
	const op = "photos.UploadPreview"

	if _, err := s.requireAlbumOwner(ctx, op, albumID, userID); err != nil {
		return nil, err
	}
	mimeType, err := detectImage(op, data)
	if err != nil {
		return nil, err
	}

	key := generator.NewObjectKey(generator.TierPreview, filename, mimeType)
	if err := s.store.Put(ctx, key, data, mimeType); err != nil {
		return nil, apperr.External(op, err)
	}

	photo := &models.Photo{
		AlbumID:          albumID,
		StorageKey:       key,
		OriginalFileName: generator.SanitizeFileName(filename),
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		s.discard(ctx, key)
		return nil, apperr.Persistence(op, err)
	}
	return photo, nil
}

// ReplaceWithFinalized 上传定稿版本，删除旧的预览、分析与定稿对象
// 定稿后照片不再参与云端分析
func (s *Service) ReplaceWithFinalized(ctx context.Context, photoID, userID uint, data []byte, filename string) (*models.Photo, error) {
	const op = "photos.ReplaceWithFinalized"

	photo, err := s.GetPhotoForOwner(ctx, photoID, userID)
	if err != nil {
		return nil, err
	}
	mimeType, err := detectImage(op, data)
	if err != nil {
		return nil, err
	}

	oldKeys := photo.ObjectKeys()
	newKey := generator.NewObjectKey(generator.TierFinal, filename, mimeType)
	if err := s.store.Put(ctx, newKey, data, mimeType); err != nil {
		return nil, apperr.External(op, err)
	}

	if len(oldKeys) > 0 {
		if err := s.store.DeleteMany(ctx, oldKeys); err != nil {
			s.discard(ctx, newKey)
			return nil, apperr.External(op, err)
		}
	}

	if err := s.photos.MarkFinalized(ctx, photo.ID, newKey); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "photo not found")
		}
		log := utils.Component("photos")
		log.Error().Err(err).Uint("photo_id", photo.ID).Str("orphaned_key", newKey).
			Msg("finalized object stored but photo row not updated")
		return nil, apperr.Persistence(op, err)
	}

	updated, err := s.photos.GetByID(ctx, photo.ID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return updated, nil
}

// DeletePhoto 先批量删除对象，成功后再删除照片及评论行
func (s *Service) DeletePhoto(ctx context.Context, photoID, userID uint) error {
	const op = "photos.Delete"

	photo, err := s.GetPhotoForOwner(ctx, photoID, userID)
	if err != nil {
		return err
	}

	keys := photo.ObjectKeys()
	if len(keys) > 0 {
		if err := s.store.DeleteMany(ctx, keys); err != nil {
			return apperr.External(op, err)
		}
	}

	err = database.TransactionWithContext(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.comments.WithTx(tx).DeleteByPhotos(ctx, []uint{photo.ID}); err != nil {
			return err
		}
		return s.photos.WithTx(tx).Delete(ctx, photo.ID)
	})
	if err != nil {
		return apperr.Persistence(op, err)
	}
	return nil
}

// ToggleLike 翻转喜欢状态，访问控制由调用方负责
func (s *Service) ToggleLike(ctx context.Context, photoID uint) (*models.Photo, error) {
	photo, err := s.photos.ToggleLike(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("photos.ToggleLike", "photo not found")
		}
		return nil, apperr.Persistence("photos.ToggleLike", err)
	}
	return photo, nil
}

// discard 尽力删除刚写入的对象
func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		log := utils.Component("photos")
		log.Warn().Err(err).Str("key", key).Msg("failed to discard uploaded object")
	}
}
