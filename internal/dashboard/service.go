// Package dashboard 管理后台统计
package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/database/repo/dashboard"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/worker"
	"github.com/anoixa/photo-share/utils"
)

const statsCacheKey = "dashboard:stats"

// StatsRepository 统计仓库接口
type StatsRepository interface {
	GetOverviewStats(ctx context.Context) (*dashboard.OverviewStats, error)
}

// Service 后台统计服务
type Service struct {
	repo     StatsRepository
	cache    cache.Provider
	pool     *worker.Pool
	cacheTTL time.Duration
}

// NewService 创建统计服务，cacheProvider 与 pool 可为 nil
func NewService(repo StatsRepository, cacheProvider cache.Provider, pool *worker.Pool) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheProvider,
		pool:     pool,
		cacheTTL: time.Minute,
	}
}

// StatsResponse 统计响应
type StatsResponse struct {
	Overview     dashboard.OverviewStats `json:"overview"`
	AnalyzedRate float64                 `json:"analyzedRate"`
	Worker       *WorkerStats            `json:"worker,omitempty"`
}

// WorkerStats 分析协程池状态
type WorkerStats struct {
	Workers   int    `json:"workers"`
	Queued    int    `json:"queued"`
	QueueCap  int    `json:"queueCap"`
	Submitted uint64 `json:"submitted"`
	Executed  uint64 `json:"executed"`
	Failed    uint64 `json:"failed"`
}

// GetStats 获取统计，概览部分缓存一分钟
func (s *Service) GetStats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse

	cached := false
	if s.cache != nil {
		cached = s.cache.Get(ctx, statsCacheKey, &resp.Overview) == nil
	}
	if !cached {
		overview, err := s.repo.GetOverviewStats(ctx)
		if err != nil {
			return nil, apperr.Persistence("dashboard.GetStats", err)
		}
		resp.Overview = *overview
		if s.cache != nil {
			if err := s.cache.Set(ctx, statsCacheKey, overview, s.cacheTTL); err != nil {
				log := utils.Component("dashboard")
				log.Warn().Err(err).Msg("failed to cache dashboard stats")
			}
		}
	}

	resp.AnalyzedRate = ratio(resp.Overview.AnalyzedTotal, resp.Overview.PhotoTotal)

	if s.pool != nil {
		st := s.pool.GetStats()
		resp.Worker = &WorkerStats{
			Workers:   st.WorkerCount,
			Queued:    st.QueueLen,
			QueueCap:  st.QueueCap,
			Submitted: st.Submitted,
			Executed:  st.Executed,
			Failed:    st.Failed,
		}
	}
	return &resp, nil
}

// ratio 百分比，保留两位小数
func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
