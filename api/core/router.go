package core

import (
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	handlerAlbums "github.com/anoixa/photo-share/api/handler/albums"
	handlerAuth "github.com/anoixa/photo-share/api/handler/auth"
	handlerDashboard "github.com/anoixa/photo-share/api/handler/dashboard"
	"github.com/anoixa/photo-share/api/handler/objects"
	handlerPhotos "github.com/anoixa/photo-share/api/handler/photos"
	"github.com/anoixa/photo-share/api/handler/public"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/storage"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container         *app.Container
	AuthRateLimiter   *middleware.IPRateLimiter
	APIRateLimiter    *middleware.IPRateLimiter
	PublicRateLimiter *middleware.IPRateLimiter
	GlobalLimiter     *middleware.ConcurrencyLimiter
	UploadLimiter     *middleware.ConcurrencyLimiter
	MaxUploadBytes    int64
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// 签名对象读取
	registerObjectRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		metrics := middleware.GetMetrics()
		limiters := gin.H{}
		for _, l := range []*middleware.ConcurrencyLimiter{deps.GlobalLimiter, deps.UploadLimiter} {
			if l != nil {
				limiters[l.Name()] = l.Stats()
			}
		}
		metrics["concurrency"] = limiters
		context.JSON(http.StatusOK, metrics)
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerObjectRoutes 本地与 WebDAV 存储的签名 URL 由这里读取
func registerObjectRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container
	objectHandler := objects.NewHandler(c.Store, c.Signer)

	objectGroup := router.Group(storage.ObjectsPathPrefix)
	objectGroup.Use(deps.PublicRateLimiter.Middleware())
	{
		objectGroup.GET("/*key", objectHandler.GetObject) // GET /objects/{key}?expires=&signature=
	}
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container

	authHandler := handlerAuth.NewHandler(c.Login)
	albumHandler := handlerAlbums.NewHandler(c.Albums, c.Photos, c.Analysis, deps.MaxUploadBytes)
	photoHandler := handlerPhotos.NewHandler(c.Photos, c.Analysis, deps.MaxUploadBytes)
	publicHandler := public.NewHandler(c.Albums, c.Photos, c.Guard)
	dashboardHandler := handlerDashboard.NewHandler(c.Dashboard)

	var uploadGate gin.HandlerFunc = func(context *gin.Context) { context.Next() }
	if deps.UploadLimiter != nil {
		uploadGate = deps.UploadLimiter.Queue(uploadQueueWait)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(deps.AuthRateLimiter.Middleware())
		{
			authGroup.POST("/register", authHandler.RegisterHandler) // POST /api/auth/register
			authGroup.POST("/login", authHandler.LoginHandler)       // POST /api/auth/login
		}

		publicGroup := apiGroup.Group("/public")
		publicGroup.Use(deps.PublicRateLimiter.Middleware())
		{
			publicGroup.GET("/album/:shareToken", publicHandler.GetSharedAlbumHandler)           // GET /api/public/album/{token}
			publicGroup.POST("/like/:shareToken/:photoId", publicHandler.ToggleLikeHandler)      // POST /api/public/like/{token}/{photoId}
			publicGroup.GET("/comments/:shareToken/:photoId", publicHandler.ListCommentsHandler) // GET /api/public/comments/{token}/{photoId}
			publicGroup.POST("/comments/:shareToken/:photoId", publicHandler.AddCommentHandler)  // POST /api/public/comments/{token}/{photoId}
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(deps.APIRateLimiter.Middleware())
		v1.Use(middleware.CombinedAuth(c.JWT))
		{
			albumsGroup := v1.Group("/albums")
			{
				albumsGroup.GET("", albumHandler.ListAlbumsHandler)                             // GET /api/v1/albums
				albumsGroup.POST("", albumHandler.CreateAlbumHandler)                           // POST /api/v1/albums
				albumsGroup.GET("/:id", albumHandler.GetAlbumDetailHandler)                     // GET /api/v1/albums/{id}
				albumsGroup.DELETE("/:id", albumHandler.DeleteAlbumHandler)                     // DELETE /api/v1/albums/{id}
				albumsGroup.POST("/:id/analyze", albumHandler.AnalyzeAlbumHandler)              // POST /api/v1/albums/{id}/analyze
				albumsGroup.GET("/:id/share-link", albumHandler.ShareLinkHandler)               // GET /api/v1/albums/{id}/share-link
				albumsGroup.GET("/:id/photos", albumHandler.ListPhotosHandler)                  // GET /api/v1/albums/{id}/photos
				albumsGroup.POST("/:id/photos", uploadGate, albumHandler.UploadPhotoHandler)    // POST /api/v1/albums/{id}/photos
				albumsGroup.GET("/:id/liked-photos", albumHandler.ListLikedPhotosHandler)       // GET /api/v1/albums/{id}/liked-photos
				albumsGroup.GET("/:id/liked-photos/export", albumHandler.ExportLikedHandler)    // GET /api/v1/albums/{id}/liked-photos/export
				albumsGroup.POST("/:id/archives", uploadGate, albumHandler.SyncArchivesHandler) // POST /api/v1/albums/{id}/archives
			}

			photosGroup := v1.Group("/photos")
			{
				photosGroup.POST("/analyze-cloud", uploadGate, photoHandler.AnalyzeCloudHandler)   // POST /api/v1/photos/analyze-cloud
				photosGroup.DELETE("/:id", photoHandler.DeletePhotoHandler)                        // DELETE /api/v1/photos/{id}
				photosGroup.POST("/:id/upload-final", uploadGate, photoHandler.UploadFinalHandler) // POST /api/v1/photos/{id}/upload-final
				photosGroup.GET("/:id/comments", photoHandler.ListCommentsHandler)                 // GET /api/v1/photos/{id}/comments
				photosGroup.POST("/:id/comments", photoHandler.AddCommentHandler)                  // POST /api/v1/photos/{id}/comments
			}

			dashboardHandler.SetupRoutes(v1, middleware.Authorize(middleware.AuthTypeJWT), middleware.RequireRole(models.RoleAdmin))
		}
	}
}
