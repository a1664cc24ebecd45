package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/anoixa/photo-share/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 按信号量限制同时处理的请求数
type ConcurrencyLimiter struct {
	name  string
	limit int64
	sem   *semaphore.Weighted

	inFlight atomic.Int64
	rejected atomic.Int64
}

// LimiterStats 并发限制器状态
type LimiterStats struct {
	Limit    int64 `json:"limit"`
	InFlight int64 `json:"in_flight"`
	Rejected int64 `json:"rejected"`
}

// NewConcurrencyLimiter 创建并发限制器，limit <= 0 时取 100
func NewConcurrencyLimiter(name string, limit int64) *ConcurrencyLimiter {
	if limit <= 0 {
		limit = 100
	}
	return &ConcurrencyLimiter{name: name, limit: limit, sem: semaphore.NewWeighted(limit)}
}

// Name 限制器名称
func (cl *ConcurrencyLimiter) Name() string { return cl.name }

// Middleware 没有空闲槽位时立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			cl.reject(c, "Server is busy, please try again later")
			return
		}
		cl.serve(c)
	}
}

// Queue 最多等待 wait 获取槽位，超时或客户端断开时返回 503
func (cl *ConcurrencyLimiter) Queue(wait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		err := cl.sem.Acquire(ctx, 1)
		cancel()
		if err != nil {
			cl.reject(c, "Too many uploads in progress, please try again later")
			return
		}
		cl.serve(c)
	}
}

// Stats 当前状态
func (cl *ConcurrencyLimiter) Stats() LimiterStats {
	return LimiterStats{
		Limit:    cl.limit,
		InFlight: cl.inFlight.Load(),
		Rejected: cl.rejected.Load(),
	}
}

func (cl *ConcurrencyLimiter) serve(c *gin.Context) {
	cl.inFlight.Add(1)
	defer func() {
		cl.inFlight.Add(-1)
		cl.sem.Release(1)
	}()
	c.Next()
}

func (cl *ConcurrencyLimiter) reject(c *gin.Context, msg string) {
	cl.rejected.Add(1)
	common.RespondErrorAbort(c, http.StatusServiceUnavailable, msg)
}
