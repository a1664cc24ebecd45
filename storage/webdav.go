package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// webdavClient gowebdav 客户端中用到的方法
type webdavClient interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Read(path string) ([]byte, error)
	Write(path string, data []byte, mode os.FileMode) error
	Remove(path string) error
	Mkdir(path string, mode os.FileMode) error
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   webdavClient
	baseURL  string
	rootPath string
	signer   *URLSigner
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg WebDAVConfig, signer *URLSigner) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	s := newWebDAVStorage(client, cfg.URL, cfg.RootPath, signer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return s, nil
}

func newWebDAVStorage(client webdavClient, baseURL, rootPath string, signer *URLSigner) *WebDAVStorage {
	rootPath = strings.Trim(rootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}
	return &WebDAVStorage{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		rootPath: rootPath,
		signer:   signer,
	}
}

// call 在 goroutine 中执行阻塞的 WebDAV 调用，支持 ctx 取消
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-done:
		return res.v, res.err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + key
	}
	return "/" + key
}

// ensureParentDir 递归创建父目录
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	currentPath := ""
	for _, part := range strings.Split(strings.Trim(parentDir, "/"), "/") {
		if part == "" {
			continue
		}
		currentPath += "/" + part

		p := currentPath
		_, err := call(ctx, func() (struct{}, error) {
			return struct{}{}, s.client.Mkdir(p, 0755)
		})
		if err != nil && !isCollectionExistsError(err) {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
	}
	return nil
}

// isCollectionExistsError 判断是否为目录已存在的错误
func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, s := range []string{"already exists", "conflict", "409", "method not allowed", "405"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// Put 写入对象
func (s *WebDAVStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if !IsValidStoragePath(key) {
		return fmt.Errorf("invalid storage path: %s", key)
	}
	fullPath := s.fullPath(key)

	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", key, err)
	}

	_, err := call(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Write(fullPath, data, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", key, err)
	}
	return nil
}

// Get 读取对象
func (s *WebDAVStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if !IsValidStoragePath(key) {
		return nil, fmt.Errorf("invalid storage path: %s", key)
	}
	data, err := call(ctx, func() ([]byte, error) {
		return s.client.Read(s.fullPath(key))
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return data, nil
}

// Delete 删除对象
func (s *WebDAVStorage) Delete(ctx context.Context, key string) error {
	if !IsValidStoragePath(key) {
		return fmt.Errorf("invalid storage path: %s", key)
	}
	_, err := call(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Remove(s.fullPath(key))
	})
	if err != nil && !gowebdav.IsErrNotFound(err) {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

// DeleteMany WebDAV 无批量删除，逐个删除并汇总错误
func (s *WebDAVStorage) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// PresignRead 生成由 API 代理读取的签名 URL
func (s *WebDAVStorage) PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !IsValidStoragePath(key) {
		return "", fmt.Errorf("invalid storage path: %s", key)
	}
	if s.signer == nil {
		return "", errors.New("webdav storage has no url signer")
	}
	return s.signer.Sign(key, ttl), nil
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if s.client == nil {
		return errors.New("webdav client not initialized")
	}
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	_, err := call(ctx, func() ([]os.FileInfo, error) {
		return s.client.ReadDir(root)
	})
	return err
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	if s.baseURL == "" {
		return "webdav"
	}
	return fmt.Sprintf("webdav:%s%s", s.baseURL, s.rootPath)
}
