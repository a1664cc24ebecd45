package photos

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/generator"
)

// ArchiveItem 客户端本地归档的一张照片
type ArchiveItem struct {
	OriginalFileName string `json:"originalFileName" binding:"required"`
	LocalCategory    string `json:"localCategory"`
	ThumbnailBase64  string `json:"thumbnailBase64"`
	PreviewBase64    string `json:"previewBase64"`
}

// DecodeBase64Image 解码 base64 图片，兼容 data URL 前缀
func DecodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

// SyncArchives 批量导入归档：缩略图写入预览层，预览图写入分析层
// 单项失败记录日志后跳过，返回成功保存的照片
func (s *Service) SyncArchives(ctx context.Context, albumID, userID uint, items []ArchiveItem) ([]models.Photo, error) {
	const op = "photos.SyncArchives"

	if _, err := s.requireAlbumOwner(ctx, op, albumID, userID); err != nil {
		return nil, err
	}

	log := utils.Component("photos")
	saved := make([]models.Photo, 0, len(items))
	for i := range items {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		photo, err := s.saveArchive(ctx, albumID, &items[i])
		if err != nil {
			log.Warn().Err(err).Uint("album_id", albumID).Str("file", items[i].OriginalFileName).
				Msg("archive item skipped")
			continue
		}
		saved = append(saved, *photo)
	}

	log.Info().Uint("album_id", albumID).Int("saved", len(saved)).Int("total", len(items)).Msg("archives synced")
	return saved, nil
}

func (s *Service) saveArchive(ctx context.Context, albumID uint, item *ArchiveItem) (*models.Photo, error) {
	const op = "photos.SyncArchives"

	photo := &models.Photo{
		AlbumID:          albumID,
		OriginalFileName: generator.SanitizeFileName(item.OriginalFileName),
		LocalCategory:    strings.TrimSpace(item.LocalCategory),
	}

	var written []string
	upload := func(encoded string, tier generator.Tier) (string, error) {
		data, err := DecodeBase64Image(encoded)
		if err != nil {
			return "", apperr.Validation(op, "invalid base64 image")
		}
		contentType := utils.DetectContentType(data)
		key := generator.NewObjectKey(tier, item.OriginalFileName, contentType)
		if err := s.store.Put(ctx, key, data, contentType); err != nil {
			return "", apperr.External(op, err)
		}
		written = append(written, key)
		return key, nil
	}

	var err error
	if strings.TrimSpace(item.ThumbnailBase64) != "" {
		if photo.StorageKey, err = upload(item.ThumbnailBase64, generator.TierPreview); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(item.PreviewBase64) != "" {
		if photo.AnalysisImageKey, err = upload(item.PreviewBase64, generator.TierAnalysis); err != nil {
			s.discardAll(ctx, written)
			return nil, err
		}
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		s.discardAll(ctx, written)
		return nil, apperr.Persistence(op, err)
	}
	return photo, nil
}

func (s *Service) discardAll(ctx context.Context, keys []string) {
	for _, k := range keys {
		s.discard(ctx, k)
	}
}
