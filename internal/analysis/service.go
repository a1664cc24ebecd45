package analysis

import (
	"context"
	"encoding/base64"
	"strings"

	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/vision"
)

// Service 分析入口：校验所有权并异步分发
type Service struct {
	albums       *albumsrepo.Repository
	orchestrator *Orchestrator
	dispatcher   Dispatcher
}

// NewService 创建分析服务
func NewService(albums *albumsrepo.Repository, orchestrator *Orchestrator, dispatcher Dispatcher) *Service {
	return &Service{albums: albums, orchestrator: orchestrator, dispatcher: dispatcher}
}

// AnalyzeAlbum 提交相册分析，接受后立即返回
func (s *Service) AnalyzeAlbum(ctx context.Context, albumID, userID uint) error {
	const op = "analysis.AnalyzeAlbum"

	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if album == nil {
		return apperr.NotFound(op, "album not found")
	}
	if !album.IsOwnedBy(userID) {
		return apperr.Forbidden(op, "not the owner of this album")
	}

	if err := s.dispatcher.Dispatch(ctx, albumID); err != nil {
		return apperr.External(op, err)
	}

	log := utils.Component("analysis")
	log.Info().Uint("album_id", albumID).Str("dispatcher", s.dispatcher.Name()).Msg("album analysis accepted")
	return nil
}

// AnalyzeSingleCloud 分析一张 base64 图片，结果不落库
func (s *Service) AnalyzeSingleCloud(ctx context.Context, imageBase64 string) (*vision.Result, error) {
	data, err := decodeImage(imageBase64)
	if err != nil {
		return nil, apperr.Validation("analysis.AnalyzeSingleCloud", "invalid base64 image")
	}
	return s.orchestrator.AnalyzeSingleCloud(ctx, data)
}

func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
