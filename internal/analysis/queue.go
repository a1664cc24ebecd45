package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/utils"
	"github.com/hibiken/asynq"
)

const (
	// TypeAnalyzeAlbum 相册分析任务类型
	TypeAnalyzeAlbum = "analysis:album"

	// QueueName 分析任务队列
	QueueName = "analysis"
)

type albumPayload struct {
	AlbumID uint `json:"albumId"`
}

// taskID 同一相册同时只保留一个排队或执行中的任务，完成后立即释放
func taskID(albumID uint) string {
	return fmt.Sprintf("analyze-album:%d", albumID)
}

// NewAlbumTask 创建相册分析任务
func NewAlbumTask(albumID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(albumPayload{AlbumID: albumID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnalyzeAlbum, payload,
		asynq.TaskID(taskID(albumID)),
		asynq.Queue(QueueName),
		asynq.MaxRetry(0),
		asynq.Retention(0),
	), nil
}

// enqueuer asynq.Client 中用到的方法
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// QueueDispatcher 通过 asynq/redis 分发，可跨进程去重
type QueueDispatcher struct {
	client enqueuer
}

// NewQueueDispatcher 创建队列分发器
func NewQueueDispatcher(opt asynq.RedisClientOpt) *QueueDispatcher {
	return &QueueDispatcher{client: asynq.NewClient(opt)}
}

// Dispatch 入队，任务已在队列中时视为已接受
func (d *QueueDispatcher) Dispatch(ctx context.Context, albumID uint) error {
	task, err := NewAlbumTask(albumID)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			log := utils.Component("analysis")
			log.Debug().Uint("album_id", albumID).Msg("album analysis already queued")
			return nil
		}
		return err
	}

	log := utils.Component("analysis")
	log.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("album analysis enqueued")
	return nil
}

func (d *QueueDispatcher) Name() string { return "asynq" }

// Close 关闭 asynq 客户端
func (d *QueueDispatcher) Close() error {
	return d.client.Close()
}

// HandleAlbumTask asynq 任务处理函数
// 运行失败或被中断时只记录日志，任务正常完成，不留在归档集合中占用 task id
func HandleAlbumTask(runner Runner) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p albumPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		summary, err := runner.RunAlbum(ctx, p.AlbumID)
		if err != nil && !errors.Is(err, ErrAlbumInFlight) {
			log := utils.Component("analysis")
			log.Error().Err(err).
				Uint("album_id", p.AlbumID).
				Int("analyzed", summary.Analyzed).
				Bool("interrupted", utils.IsContextDone(err)).
				Msg("album analysis did not finish, remaining photos stay eligible")
		}
		return nil
	}
}

// QueueWorker 消费分析队列
type QueueWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewQueueWorker 创建队列消费者
func NewQueueWorker(opt asynq.RedisClientOpt, concurrency int, runner Runner) *QueueWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		Logger:      asynqLogger{},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAnalyzeAlbum, HandleAlbumTask(runner))
	return &QueueWorker{server: server, mux: mux}
}

// Start 启动消费者，非阻塞
func (w *QueueWorker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown 等待进行中的任务后退出
func (w *QueueWorker) Shutdown() {
	w.server.Shutdown()
}

// asynqLogger 把 asynq 日志转到 zerolog
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) {
	log := utils.Component("asynq")
	log.Debug().Msg(fmt.Sprint(args...))
}

func (asynqLogger) Info(args ...interface{}) {
	log := utils.Component("asynq")
	log.Info().Msg(fmt.Sprint(args...))
}

func (asynqLogger) Warn(args ...interface{}) {
	log := utils.Component("asynq")
	log.Warn().Msg(fmt.Sprint(args...))
}

func (asynqLogger) Error(args ...interface{}) {
	log := utils.Component("asynq")
	log.Error().Msg(fmt.Sprint(args...))
}

func (asynqLogger) Fatal(args ...interface{}) {
	log := utils.Component("asynq")
	log.Fatal().Msg(fmt.Sprint(args...))
}
