package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Photo 照片，最多持有三个对象存储 key：预览、定稿、分析
type Photo struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	AlbumID uint `gorm:"not null;index:idx_photo_album_analyzed,priority:1;index:idx_photo_album_liked,priority:1" json:"albumId"`

	StorageKey       string `gorm:"type:varchar(512)" json:"-"`
	FinalStorageKey  string `gorm:"type:varchar(512)" json:"-"`
	AnalysisImageKey string `gorm:"type:varchar(512)" json:"-"`

	OriginalFileName string `gorm:"type:varchar(255)" json:"originalFileName"`
	LocalCategory    string `gorm:"type:varchar(100)" json:"localCategory"`

	Categories      datatypes.JSONSlice[string] `json:"categories"`
	Labels          datatypes.JSONSlice[string] `json:"labels"`
	DetectedText    string                      `gorm:"type:text" json:"detectedText"`
	FaceCount       int                         `json:"faceCount"`
	AllFacesSmiling bool                        `json:"allFacesSmiling"`
	AllEyesOpen     bool                        `json:"allEyesOpen"`

	CloudAnalyzed bool `gorm:"not null;default:false;index:idx_photo_album_analyzed,priority:2" json:"cloudAnalyzed"`
	Liked         bool `gorm:"not null;default:false;index:idx_photo_album_liked,priority:2" json:"liked"`
	Finalized     bool `gorm:"not null;default:false" json:"finalized"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Album    *Album    `gorm:"foreignKey:AlbumID" json:"-"`
	Comments []Comment `gorm:"foreignKey:PhotoID" json:"-"`
}

// ObjectKeys 返回照片引用的所有非空对象存储 key（已去重）
func (p *Photo) ObjectKeys() []string {
	return CollectKeys([]Photo{*p})
}

// CollectKeys 汇总多张照片的所有非空 key，去重并保持出现顺序
func CollectKeys(photos []Photo) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(photos)*3)
	for i := range photos {
		for _, k := range []string{photos[i].StorageKey, photos[i].FinalStorageKey, photos[i].AnalysisImageKey} {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}
