// Package analysis 相册批量云端分析
package analysis

import (
	"context"
	"errors"
	"strings"

	"github.com/anoixa/photo-share/database/models"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/generator"
	"github.com/anoixa/photo-share/vision"
	"gorm.io/datatypes"
)

// ErrAlbumInFlight 同一相册已有分析在进行
var ErrAlbumInFlight = errors.New("album analysis already in flight")

// Summary 单次批量分析结果
type Summary struct {
	AlbumID  uint `json:"albumId"`
	Total    int  `json:"total"`
	Analyzed int  `json:"analyzed"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
}

// Runner 执行一个相册的批量分析
type Runner interface {
	RunAlbum(ctx context.Context, albumID uint) (Summary, error)
}

// Orchestrator 逐张调用识别网关并写回结果
type Orchestrator struct {
	photos   *photosrepo.Repository
	store    storage.Provider
	analyzer vision.Analyzer
	leases   *Leases
}

// NewOrchestrator 创建分析编排器
func NewOrchestrator(photos *photosrepo.Repository, store storage.Provider, analyzer vision.Analyzer) *Orchestrator {
	return &Orchestrator{
		photos:   photos,
		store:    store,
		analyzer: analyzer,
		leases:   NewLeases(),
	}
}

// RunAlbum 顺序分析相册内全部未分析照片，单张失败不影响其余照片
func (o *Orchestrator) RunAlbum(ctx context.Context, albumID uint) (Summary, error) {
	summary := Summary{AlbumID: albumID}
	log := utils.Component("analysis")

	release, ok := o.leases.TryAcquire(albumID)
	if !ok {
		log.Info().Uint("album_id", albumID).Msg("analysis already running, request coalesced")
		return summary, ErrAlbumInFlight
	}
	defer release()

	photos, err := o.photos.FindUnanalyzedByAlbum(ctx, albumID)
	if err != nil {
		return summary, apperr.Persistence("analysis.RunAlbum", err)
	}
	summary.Total = len(photos)

	for i := range photos {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Uint("album_id", albumID).Msg("analysis interrupted")
			return summary, err
		}

		photo := &photos[i]
		key := strings.TrimSpace(photo.AnalysisImageKey)
		if key == "" {
			summary.Skipped++
			log.Warn().Uint("photo_id", photo.ID).Msg("photo has no analysis image, skipped")
			continue
		}

		result, err := o.analyzer.Analyze(ctx, key)
		if err != nil {
			if utils.IsContextDone(err) && ctx.Err() != nil {
				log.Warn().Err(err).Uint("album_id", albumID).Msg("analysis interrupted")
				return summary, err
			}
			summary.Failed++
			log.Error().Err(err).Uint("photo_id", photo.ID).Str("analyzer", o.analyzer.Name()).Msg("photo analysis failed")
			continue
		}

		applyResult(photo, result)
		if err := o.photos.UpdateAnalysis(ctx, photo); err != nil {
			summary.Failed++
			log.Error().Err(err).Uint("photo_id", photo.ID).Msg("failed to save analysis result")
			continue
		}
		summary.Analyzed++
	}

	log.Info().
		Uint("album_id", albumID).
		Int("total", summary.Total).
		Int("analyzed", summary.Analyzed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("album analysis finished")
	return summary, nil
}

func applyResult(photo *models.Photo, r *vision.Result) {
	photo.Categories = datatypes.JSONSlice[string](nonNil(r.Categories))
	photo.Labels = datatypes.JSONSlice[string](nonNil(r.Labels))
	photo.DetectedText = r.DetectedText
	photo.FaceCount = r.FaceCount
	photo.AllFacesSmiling = r.AllFacesSmiling
	photo.AllEyesOpen = r.AllEyesOpen
	photo.CloudAnalyzed = true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AnalyzeSingleCloud 临时上传一张 base64 图片并分析，临时对象总会被删除
func (o *Orchestrator) AnalyzeSingleCloud(ctx context.Context, data []byte) (*vision.Result, error) {
	const op = "analysis.AnalyzeSingleCloud"

	if len(data) == 0 {
		return nil, apperr.Validation(op, "image is empty")
	}

	key := generator.NewTempAnalysisKey()
	if err := o.store.Put(ctx, key, data, utils.DetectContentType(data)); err != nil {
		return nil, apperr.External(op, err)
	}
	defer func() {
		if err := o.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			log := utils.Component("analysis")
			log.Warn().Err(err).Str("key", key).Msg("failed to delete temporary analysis object")
		}
	}()

	result, err := o.analyzer.Analyze(ctx, key)
	if err != nil {
		return nil, apperr.External(op, err)
	}
	return result, nil
}
