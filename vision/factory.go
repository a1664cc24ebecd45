package vision

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
)

// NewAnalyzer 根据配置创建识别后端
func NewAnalyzer(ctx context.Context, cfg *config.Config, store storage.Provider) (Analyzer, error) {
	log := utils.Component("vision")

	var (
		a   Analyzer
		err error
	)
	switch cfg.VisionProvider {
	case "rekognition":
		rc := RekognitionConfig{Region: cfg.VisionRegion, MaxLabels: cfg.VisionMaxLabels}
		if cfg.StorageType == storage.TypeS3 {
			rc.AccessKey, rc.SecretKey = cfg.StorageAccessKey, cfg.StorageSecretKey
		}
		a, err = NewRekognition(ctx, rc, store)
	case "gemini":
		a, err = NewGemini(ctx, GeminiConfig{
			APIKey:    cfg.VisionGeminiAPIKey,
			Model:     cfg.VisionGeminiModel,
			MaxLabels: cfg.VisionMaxLabels,
		}, store)
	case "", "none", "disabled":
		a = Disabled{}
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", cfg.VisionProvider)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("provider", a.Name()).Msg("vision analyzer initialized")
	return a, nil
}
