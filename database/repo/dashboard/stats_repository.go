package dashboard

import (
	"context"

	"github.com/anoixa/photo-share/database/models"
	"gorm.io/gorm"
)

// Repository 后台统计仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的统计仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OverviewStats 概览统计
type OverviewStats struct {
	UserTotal      int64 `json:"userTotal"`
	AlbumTotal     int64 `json:"albumTotal"`
	PhotoTotal     int64 `json:"photoTotal"`
	AnalyzedTotal  int64 `json:"analyzedTotal"`
	FinalizedTotal int64 `json:"finalizedTotal"`
	LikedTotal     int64 `json:"likedTotal"`
	CommentTotal   int64 `json:"commentTotal"`
}

// GetOverviewStats 获取概览统计
func (r *Repository) GetOverviewStats(ctx context.Context) (*OverviewStats, error) {
	var result OverviewStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&result.UserTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Album{}).Count(&result.AlbumTotal).Error; err != nil {
		return nil, err
	}

	var photoStats struct {
		PhotoTotal     int64
		AnalyzedTotal  int64
		FinalizedTotal int64
		LikedTotal     int64
	}
	err := db.Model(&models.Photo{}).
		Select("COUNT(*) as photo_total, " +
			"COALESCE(SUM(CASE WHEN cloud_analyzed THEN 1 ELSE 0 END), 0) as analyzed_total, " +
			"COALESCE(SUM(CASE WHEN finalized THEN 1 ELSE 0 END), 0) as finalized_total, " +
			"COALESCE(SUM(CASE WHEN liked THEN 1 ELSE 0 END), 0) as liked_total").
		Scan(&photoStats).Error
	if err != nil {
		return nil, err
	}
	result.PhotoTotal = photoStats.PhotoTotal
	result.AnalyzedTotal = photoStats.AnalyzedTotal
	result.FinalizedTotal = photoStats.FinalizedTotal
	result.LikedTotal = photoStats.LikedTotal

	if err := db.Model(&models.Comment{}).Count(&result.CommentTotal).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
