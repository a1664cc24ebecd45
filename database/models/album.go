package models

import "time"

type Album struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	ShareToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"shareToken"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	PhotoCount int64 `gorm:"-" json:"photoCount"`

	Photos []Photo `gorm:"foreignKey:AlbumID" json:"-"`
}

// IsOwnedBy 判断相册是否属于指定用户
func (a *Album) IsOwnedBy(userID uint) bool {
	return a != nil && a.UserID == userID
}
