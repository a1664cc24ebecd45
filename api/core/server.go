package core

import (
	"net/http"
	"time"

	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/format"
	"github.com/anoixa/photo-share/utils/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const (
	maxConcurrentRequests = 100
	maxConcurrentUploads  = 8
	uploadQueueWait       = 10 * time.Second
)

// 启动gin
func setupRouter(c *app.Container) (*gin.Engine, func()) {
	cfg := c.GetConfig()
	if err := validator.RegisterBindings(); err != nil {
		log := utils.Component("server")
		log.Warn().Err(err).Msg("failed to register binding validators")
	}

	// 仅在开发版本时启用 gin 日志
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	maxUpload := uploadLimit(cfg)
	router.MaxMultipartMemory = maxUpload

	// 全局并发限制，上传另有更小的排队限制
	globalLimiter := middleware.NewConcurrencyLimiter("global", maxConcurrentRequests)
	uploadLimiter := middleware.NewConcurrencyLimiter("upload", maxConcurrentUploads)
	router.Use(globalLimiter.Middleware())

	// 请求体大小限制，留出 multipart 开销
	router.Use(middleware.MaxBytesReader(maxUpload + 1<<20))

	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	publicRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPublicRPS, cfg.RateLimitPublicBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
		publicRateLimiter.StopCleanup()
	}

	router.GET("/health", func(context *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(c.DB),
			"cache":    checkCacheHealth(c.Cache),
			"storage":  checkStorageHealth(c.Store),
		}
		httpStatus := http.StatusOK
		status := "ok"
		for _, result := range checks {
			if result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				status = "degraded"
				break
			}
		}
		context.JSON(httpStatus, gin.H{
			"status":  status,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	})

	RegisterRoutes(router, &RouterDependencies{
		Container:         c,
		AuthRateLimiter:   authRateLimiter,
		APIRateLimiter:    apiRateLimiter,
		PublicRateLimiter: publicRateLimiter,
		GlobalLimiter:     globalLimiter,
		UploadLimiter:     uploadLimiter,
		MaxUploadBytes:    maxUpload,
	})

	return router, cleanup
}

func uploadLimit(cfg *config.Config) int64 {
	if limit := format.MegabytesToBytes(cfg.UploadMaxSizeMB); limit > 0 {
		return limit
	}
	return format.MegabytesToBytes(20)
}

// StartServer 创建 http.Server
func StartServer(c *app.Container) (*http.Server, func()) {
	cfg := c.GetConfig()
	router, clean := setupRouter(c)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
