package albums

import (
	"github.com/anoixa/photo-share/internal/albums"
	"github.com/anoixa/photo-share/internal/analysis"
	"github.com/anoixa/photo-share/internal/photos"
)

// Handler 相册处理器
type Handler struct {
	albums   *albums.Service
	photos   *photos.Service
	analysis *analysis.Service
	maxSize  int64
}

// NewHandler 创建新的相册处理器，maxUploadBytes 为单文件上限
func NewHandler(albumSvc *albums.Service, photoSvc *photos.Service, analysisSvc *analysis.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		albums:   albumSvc,
		photos:   photoSvc,
		analysis: analysisSvc,
		maxSize:  maxUploadBytes,
	}
}
