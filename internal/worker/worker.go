package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anoixa/photo-share/utils"
)

// Task 异步任务
type Task func()

// Stats 协程池统计信息
type Stats struct {
	Submitted   uint64
	Executed    uint64
	Failed      uint64
	WorkerCount int
	QueueLen    int
	QueueCap    int
}

// Pool 有界协程池，Submit 非阻塞，队列满时拒绝
type Pool struct {
	workers int
	queue   chan Task
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool

	submitted atomic.Uint64
	executed  atomic.Uint64
	failed    atomic.Uint64
}

var (
	globalPool *Pool
	globalMu   sync.Mutex
)

// InitGlobalPool 初始化全局协程池，已初始化时忽略
func InitGlobalPool(workers, queueSize int) *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalPool == nil {
		globalPool = NewPool(workers, queueSize)
	}
	return globalPool
}

// GetGlobalPool 获取全局协程池
func GetGlobalPool() *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalPool
}

// StopGlobalPool 停止全局协程池
func StopGlobalPool() {
	globalMu.Lock()
	p := globalPool
	globalPool = nil
	globalMu.Unlock()

	if p != nil {
		p.Stop()
	}
}

// NewPool 创建并启动协程池
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if queueSize <= 0 {
		queueSize = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	log := utils.Component("worker")
	log.Debug().Int("workers", workers).Int("queue", queueSize).Msg("worker pool started")
	return p
}

// Submit 提交任务（非阻塞，队列满或已停止时返回 false）
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return true
	default:
		log := utils.Component("worker")
		log.Warn().Int("queue_cap", cap(p.queue)).Msg("worker pool queue is full, task dropped")
		return false
	}
}

// Context 协程池生命周期，Stop 开始时取消，长任务据此提前结束
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Stop 停止接收新任务并取消 Context，等待已入队任务执行完毕，可重复调用
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.cancel()

	p.wg.Wait()

	log := utils.Component("worker")
	log.Debug().
		Uint64("executed", p.executed.Load()).
		Uint64("failed", p.failed.Load()).
		Msg("worker pool stopped")
}

// GetStats 获取统计信息
func (p *Pool) GetStats() Stats {
	return Stats{
		Submitted:   p.submitted.Load(),
		Executed:    p.executed.Load(),
		Failed:      p.failed.Load(),
		WorkerCount: p.workers,
		QueueLen:    len(p.queue),
		QueueCap:    cap(p.queue),
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		if task == nil {
			continue
		}
		p.execute(task)
	}
}

// execute 执行任务并捕获 panic
func (p *Pool) execute(task Task) {
	defer func() {
		p.executed.Add(1)
		if r := recover(); r != nil {
			p.failed.Add(1)
			log := utils.Component("worker")
			log.Error().Interface("panic", r).Msg("panic recovered in worker task")
		}
	}()
	task()
}
