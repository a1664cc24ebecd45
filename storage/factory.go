package storage

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/utils"
)

const (
	TypeLocal  = "local"
	TypeMemory = "memory"
	TypeMinio  = "minio"
	TypeS3     = "s3"
	TypeWebDAV = "webdav"
)

// NewProvider 根据配置创建对象存储
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	signer := NewURLSigner(cfg.SigningSecret(), cfg.BaseURL())
	log := utils.Component("storage")

	var (
		p   Provider
		err error
	)
	switch cfg.StorageType {
	case TypeLocal, "":
		p, err = NewLocalStorage(cfg.StorageLocalPath, signer)
	case TypeMemory:
		p = NewMemoryStorage(signer)
	case TypeMinio:
		p, err = NewMinioStorage(MinioConfig{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
			UseSSL:    cfg.StorageUseSSL,
		})
	case TypeS3:
		p, err = NewS3Storage(ctx, S3Config{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
		})
	case TypeWebDAV:
		p, err = NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.StorageWebDAVURL,
			Username: cfg.StorageWebDAVUsername,
			Password: cfg.StorageWebDAVPassword,
			RootPath: cfg.StorageWebDAVRoot,
		}, signer)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}

	log.Info().Str("provider", p.Name()).Msg("object storage initialized")
	return p, nil
}

// NeedsSignedRoute 该存储的签名 URL 是否需要由 API 的 /objects 路由提供
func NeedsSignedRoute(p Provider) bool {
	switch p.(type) {
	case *LocalStorage, *WebDAVStorage, *MemoryStorage:
		return true
	}
	return false
}
