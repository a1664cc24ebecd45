// Package share 公开分享访问控制
package share

import (
	"context"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/utils"
)

// AlbumResolver 通过分享 token 解析相册
type AlbumResolver interface {
	GetAlbumByShareToken(ctx context.Context, token string) (*models.Album, error)
}

// PhotoMembership 判断照片归属
type PhotoMembership interface {
	BelongsToAlbum(ctx context.Context, photoID, albumID uint) (bool, error)
}

// Guard 访客操作前置校验
type Guard struct {
	albums AlbumResolver
	photos PhotoMembership
}

// NewGuard 创建分享访问校验器
func NewGuard(albums AlbumResolver, photos PhotoMembership) *Guard {
	return &Guard{albums: albums, photos: photos}
}

// IsPhotoInSharedAlbum token 对应的相册存在且包含该照片时返回 true，其余情况一律返回 false
func (g *Guard) IsPhotoInSharedAlbum(ctx context.Context, token string, photoID uint) bool {
	if token == "" || photoID == 0 {
		return false
	}

	album, err := g.albums.GetAlbumByShareToken(ctx, token)
	if err != nil || album == nil {
		return false
	}

	ok, err := g.photos.BelongsToAlbum(ctx, photoID, album.ID)
	if err != nil {
		log := utils.Component("share")
		log.Warn().Err(err).Uint("photo_id", photoID).Msg("share guard lookup failed")
		return false
	}
	return ok
}
