package cache

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	// DefaultShareTokenExpiration 分享 token 缓存过期时间
	DefaultShareTokenExpiration = 10 * time.Minute

	// DefaultEmptyValueExpiration 空值缓存过期时间
	DefaultEmptyValueExpiration = time.Minute
)

// addJitter 添加 0~10% 的随机抖动
func addJitter(duration time.Duration) time.Duration {
	if duration < 10 {
		return duration
	}
	return duration + time.Duration(rand.Int64N(int64(duration)/10))
}

// HelperConfig 缓存辅助工具配置
type HelperConfig struct {
	ShareTokenTTL time.Duration
}

// Helper 领域缓存操作，provider 为 nil 时所有操作为空操作
type Helper struct {
	provider Provider
	config   HelperConfig
}

// NewHelper 创建新的缓存辅助工具
func NewHelper(provider Provider, cfg HelperConfig) *Helper {
	if cfg.ShareTokenTTL <= 0 {
		cfg.ShareTokenTTL = DefaultShareTokenExpiration
	}
	return &Helper{provider: provider, config: cfg}
}

// CacheShareToken 缓存 token 对应的相册 ID
func (h *Helper) CacheShareToken(ctx context.Context, token string, albumID uint) error {
	if h == nil || h.provider == nil {
		return nil
	}
	return h.provider.Set(ctx, ShareToken.Build(token), albumID, addJitter(h.config.ShareTokenTTL))
}

// GetCachedShareToken 获取 token 对应的相册 ID
func (h *Helper) GetCachedShareToken(ctx context.Context, token string) (uint, error) {
	if h == nil || h.provider == nil {
		return 0, ErrCacheMiss
	}
	var albumID uint
	if err := h.provider.Get(ctx, ShareToken.Build(token), &albumID); err != nil {
		return 0, err
	}
	return albumID, nil
}

// DeleteCachedShareToken 删除 token 缓存及其空值标记
func (h *Helper) DeleteCachedShareToken(ctx context.Context, token string) error {
	if h == nil || h.provider == nil {
		return nil
	}
	if err := h.provider.Delete(ctx, ShareToken.Build(token)); err != nil {
		return err
	}
	return h.provider.Delete(ctx, Empty.Build(ShareToken.Build(token)))
}

// CacheMissingShareToken 标记 token 不存在，防止缓存穿透
func (h *Helper) CacheMissingShareToken(ctx context.Context, token string) error {
	if h == nil || h.provider == nil {
		return nil
	}
	return h.provider.Set(ctx, Empty.Build(ShareToken.Build(token)), []byte{1}, DefaultEmptyValueExpiration)
}

// IsMissingShareToken token 是否已被标记为不存在
func (h *Helper) IsMissingShareToken(ctx context.Context, token string) bool {
	if h == nil || h.provider == nil {
		return false
	}
	ok, err := h.provider.Exists(ctx, Empty.Build(ShareToken.Build(token)))
	return err == nil && ok
}
