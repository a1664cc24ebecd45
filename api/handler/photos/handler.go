package photos

import (
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/handler/albums"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/analysis"
	"github.com/anoixa/photo-share/internal/photos"
	"github.com/gin-gonic/gin"
)

// Handler 照片处理器（所有者上下文）
type Handler struct {
	photos   *photos.Service
	analysis *analysis.Service
	maxSize  int64
}

// NewHandler 创建新的照片处理器
func NewHandler(photoSvc *photos.Service, analysisSvc *analysis.Service, maxUploadBytes int64) *Handler {
	return &Handler{photos: photoSvc, analysis: analysisSvc, maxSize: maxUploadBytes}
}

type analyzeCloudRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000,notblank"`
}

// DeletePhotoHandler 删除照片
// @Summary      Delete photo
// @Tags         photos
// @Produce      json
// @Param        id   path      int  true  "Photo ID"
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Failure      502  {object}  common.Response
// @Security     BearerAuth
// @Router       /photos/{id} [delete]
func (h *Handler) DeletePhotoHandler(c *gin.Context) {
	photoID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.photos.DeletePhoto(c.Request.Context(), photoID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo deleted successfully", nil)
}

// UploadFinalHandler 上传定稿并清理旧对象
// @Summary      Upload finalized photo
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Photo ID"
// @Param        file  formData  file  true  "Finalized image"
// @Success      200   {object}  common.Response{data=photos.PhotoView}
// @Security     BearerAuth
// @Router       /photos/{id}/upload-final [post]
func (h *Handler) UploadFinalHandler(c *gin.Context) {
	photoID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	data, filename, ok := albums.ReadUploadedFile(c, h.maxSize)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	photo, err := h.photos.ReplaceWithFinalized(ctx, photoID, middleware.CurrentUserID(c), data, filename)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	view, err := h.photos.ToView(ctx, photo)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// AnalyzeCloudHandler 即时分析单张图片
// @Summary      Analyze single image
// @Tags         photos
// @Accept       json
// @Produce      json
// @Param        request  body      analyzeCloudRequest  true  "Base64 image"
// @Success      200      {object}  common.Response{data=vision.Result}
// @Failure      400      {object}  common.Response
// @Failure      502      {object}  common.Response
// @Security     BearerAuth
// @Router       /photos/analyze-cloud [post]
func (h *Handler) AnalyzeCloudHandler(c *gin.Context) {
	var req analyzeCloudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analysis.AnalyzeSingleCloud(c.Request.Context(), req.ImageBase64)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// ListCommentsHandler 所有者查看评论
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Param        id   path      int  true  "Photo ID"
// @Success      200  {object}  common.Response{data=[]models.Comment}
// @Security     BearerAuth
// @Router       /photos/{id}/comments [get]
func (h *Handler) ListCommentsHandler(c *gin.Context) {
	photoID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.photos.GetPhotoForOwner(ctx, photoID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}

	comments, err := h.photos.ListComments(ctx, photoID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, comments)
}

// AddCommentHandler 所有者回复评论，评论者为当前用户名
// @Summary      Add comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Photo ID"
// @Param        request  body      commentRequest  true  "Comment"
// @Success      200      {object}  common.Response{data=models.Comment}
// @Security     BearerAuth
// @Router       /photos/{id}/comments [post]
func (h *Handler) AddCommentHandler(c *gin.Context) {
	photoID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := h.photos.GetPhotoForOwner(ctx, photoID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}

	comment, err := h.photos.AddComment(ctx, photoID, c.GetString(middleware.ContextUsernameKey), req.Content)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, comment)
}
