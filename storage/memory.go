package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage 进程内存储，用于开发与测试，签名 URL 由 API 读取
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	signer  *URLSigner
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage 创建内存存储
func NewMemoryStorage(signer *URLSigner) *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject), signer: signer}
}

// Put 写入对象
func (s *MemoryStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidStoragePath(key) {
		return fmt.Errorf("invalid storage path: %s", key)
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf, contentType: contentType}
	s.mu.Unlock()
	return nil
}

// Get 读取对象
func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

// Delete 删除对象
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// DeleteMany 批量删除
func (s *MemoryStorage) DeleteMany(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	for _, key := range keys {
		delete(s.objects, key)
	}
	s.mu.Unlock()
	return nil
}

// PresignRead 生成签名 URL
func (s *MemoryStorage) PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.signer == nil {
		return "memory://" + key, nil
	}
	return s.signer.Sign(key, ttl), nil
}

// Has 对象是否存在
func (s *MemoryStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len 对象数量
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Health 内存存储始终可用
func (s *MemoryStorage) Health(ctx context.Context) error {
	return nil
}

// Name 返回存储名称
func (s *MemoryStorage) Name() string {
	return "memory"
}
