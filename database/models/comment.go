package models

import "time"

// Comment 访客评论，评论者名称不绑定任何账号
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PhotoID       uint      `gorm:"not null;index" json:"photoId"`
	CommenterName string    `gorm:"type:varchar(100);not null" json:"commenterName"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}
