package analysis

import (
	"context"
	"errors"

	"github.com/anoixa/photo-share/internal/worker"
	"github.com/anoixa/photo-share/utils"
)

// ErrQueueFull 分析任务队列已满
var ErrQueueFull = errors.New("analysis queue is full")

// Dispatcher 把相册分析提交到异步执行环境
type Dispatcher interface {
	Dispatch(ctx context.Context, albumID uint) error
	Name() string
}

// PoolDispatcher 使用进程内协程池执行
type PoolDispatcher struct {
	pool   *worker.Pool
	runner Runner
}

// NewPoolDispatcher 创建协程池分发器
func NewPoolDispatcher(pool *worker.Pool, runner Runner) *PoolDispatcher {
	return &PoolDispatcher{pool: pool, runner: runner}
}

// Dispatch 提交任务后立即返回，任务跟随协程池而非请求的生命周期
func (d *PoolDispatcher) Dispatch(_ context.Context, albumID uint) error {
	ok := d.pool.Submit(func() {
		log := utils.Component("analysis")
		if _, err := d.runner.RunAlbum(d.pool.Context(), albumID); err != nil && !errors.Is(err, ErrAlbumInFlight) {
			log.Error().Err(err).Uint("album_id", albumID).Msg("album analysis failed")
		}
	})
	if !ok {
		return ErrQueueFull
	}
	return nil
}

func (d *PoolDispatcher) Name() string { return "pool" }
