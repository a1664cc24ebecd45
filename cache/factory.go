package cache

import (
	"fmt"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/utils"
)

// NewProvider 根据配置创建缓存
func NewProvider(cfg *config.Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.CacheType {
	case "memory", "":
		p, err = NewMemoryCache(DefaultMemoryConfig())
	case "redis":
		p, err = NewRedisCache(RedisConfig{
			Address:  cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
			Prefix:   "photo-share:",
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, err
	}

	log := utils.Component("cache")
	log.Info().Str("provider", p.Name()).Msg("cache initialized")
	return p, nil
}
