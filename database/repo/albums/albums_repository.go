package albums

import (
	"context"
	"errors"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo/base"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 相册仓库 - 封装所有相册相关的数据库操作
type Repository struct {
	*base.Repository[models.Album]
	db *gorm.DB
}

// NewRepository 创建新的相册仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Album](db), db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// FindByOwner 获取用户的全部相册，按创建时间倒序
func (r *Repository) FindByOwner(ctx context.Context, userID uint) ([]models.Album, error) {
	var albums []models.Album
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&albums).Error
	return albums, err
}

// FindByShareToken 通过分享令牌查找相册，不存在时返回 nil, nil
func (r *Repository) FindByShareToken(ctx context.Context, token string) (*models.Album, error) {
	if token == "" {
		return nil, nil
	}
	return r.FirstByCondition(ctx, "share_token = ?", token)
}

// FindByIDForUpdate 加行锁读取相册，需在事务中调用
func (r *Repository) FindByIDForUpdate(ctx context.Context, albumID uint) (*models.Album, error) {
	var album models.Album
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&album, albumID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// DeleteAlbum 删除相册行，照片与评论需先由调用方删除
func (r *Repository) DeleteAlbum(ctx context.Context, albumID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Album{}, albumID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
