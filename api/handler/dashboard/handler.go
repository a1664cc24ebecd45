package dashboard

import (
	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/internal/dashboard"
	"github.com/gin-gonic/gin"
)

// Handler 管理后台统计处理器
type Handler struct {
	svc *dashboard.Service
}

// NewHandler 创建新的 Dashboard 处理器
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{
		svc: svc,
	}
}

// GetStats 获取统计数据
// @Summary      Admin stats
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.Response{data=dashboard.StatsResponse}
// @Failure      403  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		common.RespondErr(c, err)
		return
	}

	common.RespondSuccess(c, stats)
}

// SetupRoutes 设置 Dashboard 路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	admin := router.Group("/admin")
	admin.Use(guards...)
	{
		admin.GET("/stats", h.GetStats) // GET /api/v1/admin/stats
	}
}
