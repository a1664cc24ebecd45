// Package albums 相册生命周期：创建、分享、级联删除
package albums

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/models"
	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	commentsrepo "github.com/anoixa/photo-share/database/repo/comments"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Deps 相册服务依赖
type Deps struct {
	DB       *gorm.DB
	Albums   *albumsrepo.Repository
	Photos   *photosrepo.Repository
	Comments *commentsrepo.Repository
	Store    storage.Provider
	Cache    *cache.Helper
	BaseURL  string
}

// Service 相册服务
type Service struct {
	db       *gorm.DB
	albums   *albumsrepo.Repository
	photos   *photosrepo.Repository
	comments *commentsrepo.Repository
	store    storage.Provider
	cache    *cache.Helper
	baseURL  string

	tokenGroup singleflight.Group
}

// NewService 创建相册服务
func NewService(d Deps) *Service {
	return &Service{
		db:       d.DB,
		albums:   d.Albums,
		photos:   d.Photos,
		comments: d.Comments,
		store:    d.Store,
		cache:    d.Cache,
		baseURL:  d.BaseURL,
	}
}

// CreateAlbum 创建相册并分配分享 token
func (s *Service) CreateAlbum(ctx context.Context, ownerID uint, name string) (*models.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("albums.Create", "album name must not be blank")
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return nil, err
	}

	album := &models.Album{UserID: ownerID, Name: name, ShareToken: token}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, apperr.Persistence("albums.Create", err)
	}
	return album, nil
}

// GetAlbumsForUser 用户自己的相册，附带照片数量
func (s *Service) GetAlbumsForUser(ctx context.Context, ownerID uint) ([]models.Album, error) {
	albums, err := s.albums.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Persistence("albums.ListForUser", err)
	}

	ids := make([]uint, 0, len(albums))
	for i := range albums {
		ids = append(ids, albums[i].ID)
	}
	counts, err := s.photos.CountByAlbums(ctx, ids)
	if err != nil {
		return nil, apperr.Persistence("albums.ListForUser", err)
	}
	for i := range albums {
		albums[i].PhotoCount = counts[albums[i].ID]
	}
	return albums, nil
}

// GetAlbumForOwner 获取相册并校验所有者
func (s *Service) GetAlbumForOwner(ctx context.Context, albumID, userID uint) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, apperr.Persistence("albums.Get", err)
	}
	if album == nil {
		return nil, apperr.NotFound("albums.Get", "album not found")
	}
	if !album.IsOwnedBy(userID) {
		return nil, apperr.Forbidden("albums.Get", "not the owner of this album")
	}
	return album, nil
}

// GetAlbumByShareToken 公开访问，通过分享 token 解析相册
func (s *Service) GetAlbumByShareToken(ctx context.Context, token string) (*models.Album, error) {
	token = strings.TrimSpace(token)
	if token == "" || s.cache.IsMissingShareToken(ctx, token) {
		return nil, apperr.NotFound("albums.GetByShareToken", "album not found")
	}

	if albumID, err := s.cache.GetCachedShareToken(ctx, token); err == nil {
		album, err := s.albums.GetByID(ctx, albumID)
		if err != nil {
			return nil, apperr.Persistence("albums.GetByShareToken", err)
		}
		if album != nil && album.ShareToken == token {
			return album, nil
		}
		_ = s.cache.DeleteCachedShareToken(ctx, token)
	}

	v, err, _ := s.tokenGroup.Do(token, func() (interface{}, error) {
		album, err := s.albums.FindByShareToken(ctx, token)
		if err != nil {
			return nil, apperr.Persistence("albums.GetByShareToken", err)
		}
		if album == nil {
			_ = s.cache.CacheMissingShareToken(ctx, token)
			return nil, apperr.NotFound("albums.GetByShareToken", "album not found")
		}
		if err := s.cache.CacheShareToken(ctx, token, album.ID); err != nil {
			log := utils.Component("albums")
			log.Warn().Err(err).Msg("failed to cache share token")
		}
		return album, nil
	})
	if err != nil {
		return nil, err
	}
	album := *v.(*models.Album)
	return &album, nil
}

// GetShareLink 仅所有者可获取分享链接
func (s *Service) GetShareLink(ctx context.Context, albumID, userID uint) (string, error) {
	album, err := s.GetAlbumForOwner(ctx, albumID, userID)
	if err != nil {
		return "", err
	}
	return utils.BuildShareURL(s.baseURL, album.ShareToken), nil
}

// DeleteAlbum 在同一事务中删除相册、照片与评论，并一次性批量删除对象存储 key
// 对象存储删除不随事务回滚
func (s *Service) DeleteAlbum(ctx context.Context, albumID, userID uint) error {
	var (
		token string
		keys  []string
	)

	err := database.TransactionWithContext(ctx, s.db, func(tx *gorm.DB) error {
		albums := s.albums.WithTx(tx)
		photos := s.photos.WithTx(tx)
		comments := s.comments.WithTx(tx)

		album, err := albums.FindByIDForUpdate(ctx, albumID)
		if err != nil {
			return apperr.Persistence("albums.Delete", err)
		}
		if album == nil {
			return apperr.NotFound("albums.Delete", "album not found")
		}
		if !album.IsOwnedBy(userID) {
			return apperr.Forbidden("albums.Delete", "not the owner of this album")
		}
		token = album.ShareToken

		owned, err := photos.FindByAlbum(ctx, albumID)
		if err != nil {
			return apperr.Persistence("albums.Delete", err)
		}

		keys = models.CollectKeys(owned)
		if len(keys) > 0 {
			if err := s.store.DeleteMany(ctx, keys); err != nil {
				return apperr.External("albums.Delete", err)
			}
		}

		photoIDs := make([]uint, 0, len(owned))
		for i := range owned {
			photoIDs = append(photoIDs, owned[i].ID)
		}
		if _, err := comments.DeleteByPhotos(ctx, photoIDs); err != nil {
			return apperr.Persistence("albums.Delete", err)
		}
		if _, err := photos.DeleteByAlbum(ctx, albumID); err != nil {
			return apperr.Persistence("albums.Delete", err)
		}
		if err := albums.DeleteAlbum(ctx, albumID); err != nil {
			return apperr.Persistence("albums.Delete", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			err = apperr.Persistence("albums.Delete", err)
		}
		if errors.Is(err, apperr.ErrPersistence) && len(keys) > 0 {
			log := utils.Component("albums")
			log.Error().Err(err).Uint("album_id", albumID).Strs("orphaned_keys", keys).
				Msg("album rows rolled back after objects were deleted")
		}
		return err
	}

	_ = s.cache.DeleteCachedShareToken(ctx, token)

	log := utils.Component("albums")
	log.Info().Uint("album_id", albumID).Int("objects", len(keys)).Msg("album deleted")
	return nil
}

// ExportLikedCSV 导出被喜欢照片的文件名清单
func (s *Service) ExportLikedCSV(ctx context.Context, albumID, userID uint) ([]byte, error) {
	if _, err := s.GetAlbumForOwner(ctx, albumID, userID); err != nil {
		return nil, err
	}

	liked, err := s.photos.FindLikedByAlbum(ctx, albumID)
	if err != nil {
		return nil, apperr.Persistence("albums.ExportLiked", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "originalFileName", "localCategory"})
	for _, p := range liked {
		_ = w.Write([]string{strconv.FormatUint(uint64(p.ID), 10), p.OriginalFileName, p.LocalCategory})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
