package photos

import (
	"context"
	"errors"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo/base"
	"gorm.io/gorm"
)

// Repository 照片仓库
type Repository struct {
	*base.Repository[models.Photo]
	db *gorm.DB
}

// NewRepository 创建新的照片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Photo](db), db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// GetWithAlbum 获取照片及其所属相册，不存在时返回 nil, nil
func (r *Repository) GetWithAlbum(ctx context.Context, photoID uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Preload("Album").First(&photo, photoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

// FindByAlbum 相册内全部照片，按 id 升序
func (r *Repository) FindByAlbum(ctx context.Context, albumID uint) ([]models.Photo, error) {
	return r.FindByCondition(ctx, "album_id = ?", albumID)
}

// FindLikedByAlbum 相册内被标记喜欢的照片
func (r *Repository) FindLikedByAlbum(ctx context.Context, albumID uint) ([]models.Photo, error) {
	return r.FindByCondition(ctx, "album_id = ? AND liked = ?", albumID, true)
}

// FindUnanalyzedByAlbum 相册内尚未完成云端分析的照片
func (r *Repository) FindUnanalyzedByAlbum(ctx context.Context, albumID uint) ([]models.Photo, error) {
	return r.FindByCondition(ctx, "album_id = ? AND cloud_analyzed = ?", albumID, false)
}

// BelongsToAlbum 照片是否属于指定相册
func (r *Repository) BelongsToAlbum(ctx context.Context, photoID, albumID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ? AND album_id = ?", photoID, albumID).
		Count(&count).Error
	return count > 0, err
}

// UpdateAnalysis 只写回识别结果相关字段
func (r *Repository) UpdateAnalysis(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Model(photo).
		Select("Categories", "Labels", "DetectedText", "FaceCount", "AllFacesSmiling", "AllEyesOpen", "CloudAnalyzed").
		Updates(photo).Error
}

// ToggleLike 原子翻转 liked 字段，返回更新后的照片
func (r *Repository) ToggleLike(ctx context.Context, photoID uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Photo{}).Where("id = ?", photoID).
			Update("liked", gorm.Expr("NOT liked"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&photo, photoID).Error
	})
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// DeleteByAlbum 删除相册下全部照片
func (r *Repository) DeleteByAlbum(ctx context.Context, albumID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("album_id = ?", albumID).Delete(&models.Photo{})
	return res.RowsAffected, res.Error
}

// AlbumPhotoCount 照片数量
type AlbumPhotoCount struct {
	AlbumID uint
	Count   int64
}

// CountByAlbums 批量统计相册照片数量
func (r *Repository) CountByAlbums(ctx context.Context, albumIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(albumIDs))
	if len(albumIDs) == 0 {
		return result, nil
	}
	var rows []AlbumPhotoCount
	err := r.db.WithContext(ctx).Model(&models.Photo{}).
		Select("album_id, COUNT(*) as count").
		Where("album_id IN ?", albumIDs).
		Group("album_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.AlbumID] = row.Count
	}
	return result, nil
}

// MarkFinalized 切换为定稿版本，清空预览与分析 key
func (r *Repository) MarkFinalized(ctx context.Context, photoID uint, finalKey string) error {
	res := r.db.WithContext(ctx).Model(&models.Photo{}).Where("id = ?", photoID).
		Updates(map[string]interface{}{
			"final_storage_key":  finalKey,
			"storage_key":        "",
			"analysis_image_key": "",
			"finalized":          true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
