package photos

import (
	"context"
	"strings"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/apperr"
	"golang.org/x/sync/errgroup"
)

// PhotoView 对外返回的照片，存储 key 替换为签名 URL
type PhotoView struct {
	models.Photo
	StorageURL      string `json:"storageUrl,omitempty"`
	FinalStorageURL string `json:"finalStorageUrl,omitempty"`
	PreviewURL      string `json:"previewUrl,omitempty"`
}

// ListPhotosForAlbum 相册全部照片
func (s *Service) ListPhotosForAlbum(ctx context.Context, albumID uint) ([]PhotoView, error) {
	photos, err := s.photos.FindByAlbum(ctx, albumID)
	if err != nil {
		return nil, apperr.Persistence("photos.ListForAlbum", err)
	}
	return s.toViews(ctx, photos)
}

// ListLikedPhotosForAlbum 相册内被喜欢的照片
func (s *Service) ListLikedPhotosForAlbum(ctx context.Context, albumID uint) ([]PhotoView, error) {
	photos, err := s.photos.FindLikedByAlbum(ctx, albumID)
	if err != nil {
		return nil, apperr.Persistence("photos.ListLiked", err)
	}
	return s.toViews(ctx, photos)
}

// ToView 单张照片的签名视图
func (s *Service) ToView(ctx context.Context, photo *models.Photo) (*PhotoView, error) {
	views, err := s.toViews(ctx, []models.Photo{*photo})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews 并发为每个非空 key 签发 URL
func (s *Service) toViews(ctx context.Context, photos []models.Photo) ([]PhotoView, error) {
	views := make([]PhotoView, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.presignConcurrency)

	for i := range photos {
		views[i].Photo = photos[i]
		views[i].Photo.Album = nil

		targets := []struct {
			key string
			dst *string
		}{
			{photos[i].StorageKey, &views[i].StorageURL},
			{photos[i].FinalStorageKey, &views[i].FinalStorageURL},
			{photos[i].AnalysisImageKey, &views[i].PreviewURL},
		}
		for _, t := range targets {
			key := strings.TrimSpace(t.key)
			if key == "" {
				continue
			}
			dst := t.dst
			g.Go(func() error {
				url, err := s.presign(gctx, key)
				if err != nil {
					return err
				}
				*dst = url
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, apperr.External("photos.Presign", err)
	}
	return views, nil
}

// presign 每次响应都重新签发，有效期从本次请求开始计算
func (s *Service) presign(ctx context.Context, key string) (string, error) {
	return s.store.PresignRead(ctx, key, s.presignTTL)
}
