package comments

import (
	"context"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo/base"
	"gorm.io/gorm"
)

// Repository 评论仓库
type Repository struct {
	*base.Repository[models.Comment]
	db *gorm.DB
}

// NewRepository 创建新的评论仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Comment](db), db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// FindByPhoto 照片的评论，按时间正序
func (r *Repository) FindByPhoto(ctx context.Context, photoID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("photo_id = ?", photoID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, err
}

// DeleteByPhotos 删除多张照片下的全部评论
func (r *Repository) DeleteByPhotos(ctx context.Context, photoIDs []uint) (int64, error) {
	if len(photoIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("photo_id IN ?", photoIDs).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}
