// Package storage 对象存储网关
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("object not found")

// Provider 对象存储接口，key 由调用方生成且全局唯一
type Provider interface {
	// Put 写入对象
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get 读取对象全部内容，不存在时返回 ErrObjectNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete 删除单个对象，对象不存在视为成功
	Delete(ctx context.Context, key string) error

	// DeleteMany 批量删除，一次调用完成
	DeleteMany(ctx context.Context, keys []string) error

	// PresignRead 生成限时只读 URL
	PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}
