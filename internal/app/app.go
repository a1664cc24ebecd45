// Package app 依赖装配：数据库、存储、缓存、识别后端与各服务
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/repo/accounts"
	albumsrepo "github.com/anoixa/photo-share/database/repo/albums"
	commentsrepo "github.com/anoixa/photo-share/database/repo/comments"
	dashboardrepo "github.com/anoixa/photo-share/database/repo/dashboard"
	photosrepo "github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/internal/albums"
	"github.com/anoixa/photo-share/internal/analysis"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/dashboard"
	"github.com/anoixa/photo-share/internal/photos"
	"github.com/anoixa/photo-share/internal/share"
	"github.com/anoixa/photo-share/internal/worker"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/vision"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// Container 依赖注入容器，管理所有服务的生命周期
type Container struct {
	config *config.Config

	DB       *gorm.DB
	Store    storage.Provider
	Signer   *storage.URLSigner
	Cache    cache.Provider
	Analyzer vision.Analyzer
	Pool     *worker.Pool

	AccountsRepo *accounts.Repository
	AlbumsRepo   *albumsrepo.Repository
	PhotosRepo   *photosrepo.Repository
	CommentsRepo *commentsrepo.Repository

	JWT          *auth.JWTService
	Login        *auth.LoginService
	Albums       *albums.Service
	Photos       *photos.Service
	Guard        *share.Guard
	Orchestrator *analysis.Orchestrator
	Analysis     *analysis.Service
	Dashboard    *dashboard.Service

	dispatcher  analysis.Dispatcher
	queueWorker *analysis.QueueWorker
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Init 初始化全部依赖
func (c *Container) Init(ctx context.Context) error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitServices(ctx); err != nil {
		return err
	}
	return nil
}

// InitDatabase 仅初始化数据库与仓库，供 migrate 命令使用
func (c *Container) InitDatabase() error {
	db, err := database.NewDB(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.UseDB(db)
	return nil
}

// UseDB 使用已打开的数据库并创建仓库
func (c *Container) UseDB(db *gorm.DB) {
	c.DB = db

	c.AccountsRepo = accounts.NewRepository(db)
	c.AlbumsRepo = albumsrepo.NewRepository(db)
	c.PhotosRepo = photosrepo.NewRepository(db)
	c.CommentsRepo = commentsrepo.NewRepository(db)
}

// InitServices 初始化外部依赖与服务
func (c *Container) InitServices(ctx context.Context) error {
	cfg := c.config
	log := utils.Component("app")

	c.Signer = storage.NewURLSigner(cfg.SigningSecret(), cfg.BaseURL())

	store, err := storage.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	c.Store = store

	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = cacheProvider
	helper := cache.NewHelper(cacheProvider, cache.HelperConfig{
		ShareTokenTTL: cfg.CacheShareTokenTTL,
	})

	analyzer, err := vision.NewAnalyzer(ctx, cfg, store)
	if err != nil {
		return fmt.Errorf("failed to initialize vision analyzer: %w", err)
	}
	c.Analyzer = analyzer

	jwtSvc, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}
	c.JWT = jwtSvc
	c.Login = auth.NewLoginService(c.AccountsRepo, jwtSvc)

	c.Albums = albums.NewService(albums.Deps{
		DB:       c.DB,
		Albums:   c.AlbumsRepo,
		Photos:   c.PhotosRepo,
		Comments: c.CommentsRepo,
		Store:    store,
		Cache:    helper,
		BaseURL:  cfg.BaseURL(),
	})
	c.Photos = photos.NewService(photos.Deps{
		DB:         c.DB,
		Albums:     c.AlbumsRepo,
		Photos:     c.PhotosRepo,
		Comments:   c.CommentsRepo,
		Store:      store,
		PresignTTL: cfg.GetPresignTTL(),
	})
	c.Guard = share.NewGuard(c.Albums, c.PhotosRepo)

	c.Orchestrator = analysis.NewOrchestrator(c.PhotosRepo, store, analyzer)
	c.Pool = worker.InitGlobalPool(cfg.GetWorkerCount(), cfg.WorkerQueueSize)
	if err := c.initDispatcher(); err != nil {
		return err
	}
	c.Analysis = analysis.NewService(c.AlbumsRepo, c.Orchestrator, c.dispatcher)

	c.Dashboard = dashboard.NewService(dashboardrepo.NewRepository(c.DB), cacheProvider, c.Pool)

	log.Info().
		Str("storage", store.Name()).
		Str("cache", cacheProvider.Name()).
		Str("vision", analyzer.Name()).
		Str("dispatcher", c.dispatcher.Name()).
		Msg("container initialized")
	return nil
}

// initDispatcher 选择分析任务的执行方式
func (c *Container) initDispatcher() error {
	cfg := c.config
	switch cfg.AnalysisQueue {
	case "", "pool":
		c.dispatcher = analysis.NewPoolDispatcher(c.Pool, c.Orchestrator)
	case "asynq":
		opt := asynq.RedisClientOpt{
			Addr:     cfg.AnalysisRedisAddr,
			Password: cfg.AnalysisRedisPassword,
			DB:       cfg.AnalysisRedisDB,
		}
		c.dispatcher = analysis.NewQueueDispatcher(opt)
		c.queueWorker = analysis.NewQueueWorker(opt, cfg.AnalysisConcurrency, c.Orchestrator)
		if err := c.queueWorker.Start(); err != nil {
			return fmt.Errorf("failed to start analysis queue worker: %w", err)
		}
	default:
		return fmt.Errorf("unsupported analysis queue: %s", cfg.AnalysisQueue)
	}
	return nil
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	var errs []error

	if c.queueWorker != nil {
		c.queueWorker.Shutdown()
	}
	if qd, ok := c.dispatcher.(*analysis.QueueDispatcher); ok {
		errs = append(errs, qd.Close())
	}
	worker.StopGlobalPool()

	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, database.Close(c.DB))
	}

	log := utils.Component("app")
	log.Debug().Msg("container closed")
	return errors.Join(errs...)
}
