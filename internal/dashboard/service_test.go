package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/photo-share/cache"
	dashboardRepo "github.com/anoixa/photo-share/database/repo/dashboard"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo 模拟统计仓库
type mockRepo struct {
	calls int
	stats *dashboardRepo.OverviewStats
	err   error
}

func (m *mockRepo) GetOverviewStats(context.Context) (*dashboardRepo.OverviewStats, error) {
	m.calls++
	return m.stats, m.err
}

func TestGetStats_CachesOverview(t *testing.T) {
	mem, err := cache.NewMemoryCache(cache.DefaultMemoryConfig())
	require.NoError(t, err)
	defer mem.Close()

	repo := &mockRepo{stats: &dashboardRepo.OverviewStats{PhotoTotal: 8, AnalyzedTotal: 3}}
	svc := NewService(repo, mem, nil)

	resp, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.Overview.PhotoTotal)
	assert.Equal(t, 37.5, resp.AnalyzedRate)
	assert.Nil(t, resp.Worker)

	_, err = svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestGetStats_WorkerAndErrors(t *testing.T) {
	pool := worker.NewPool(3, 5)
	defer pool.Stop()

	svc := NewService(&mockRepo{stats: &dashboardRepo.OverviewStats{}}, nil, pool)
	resp, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Worker)
	assert.Equal(t, 3, resp.Worker.Workers)
	assert.Equal(t, 5, resp.Worker.QueueCap)
	assert.Zero(t, resp.AnalyzedRate)

	failing := NewService(&mockRepo{err: errors.New("db down")}, nil, nil)
	_, err = failing.GetStats(context.Background())
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}
