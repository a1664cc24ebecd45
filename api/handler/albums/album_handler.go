package albums

import (
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/gin-gonic/gin"
)

type createAlbumRequest struct {
	Name string `json:"name" binding:"required,max=100,notblank"`
}

// CreateAlbumHandler 创建相册
// @Summary      Create album
// @Tags         albums
// @Accept       json
// @Produce      json
// @Param        request  body      createAlbumRequest  true  "Album name"
// @Success      200      {object}  common.Response{data=models.Album}
// @Failure      400      {object}  common.Response
// @Security     BearerAuth
// @Router       /albums [post]
func (h *Handler) CreateAlbumHandler(c *gin.Context) {
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.albums.CreateAlbum(c.Request.Context(), middleware.CurrentUserID(c), req.Name)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, album)
}

// ListAlbumsHandler 当前用户的相册
// @Summary      List own albums
// @Tags         albums
// @Produce      json
// @Success      200  {object}  common.Response{data=[]models.Album}
// @Security     BearerAuth
// @Router       /albums [get]
func (h *Handler) ListAlbumsHandler(c *gin.Context) {
	list, err := h.albums.GetAlbumsForUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

// GetAlbumDetailHandler 相册详情
// @Summary      Album detail
// @Tags         albums
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      200  {object}  common.Response{data=models.Album}
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /albums/{id} [get]
func (h *Handler) GetAlbumDetailHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	album, err := h.albums.GetAlbumForOwner(c.Request.Context(), albumID, middleware.CurrentUserID(c))
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, album)
}

// DeleteAlbumHandler 删除相册
// @Summary      Delete album
// @Description  Deletes the album, its photos, their comments and every stored object
// @Tags         albums
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Failure      502  {object}  common.Response  "Object store unavailable"
// @Security     BearerAuth
// @Router       /albums/{id} [delete]
func (h *Handler) DeleteAlbumHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.albums.DeleteAlbum(c.Request.Context(), albumID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Album deleted successfully", nil)
}

// ShareLinkHandler 分享链接
// @Summary      Share link
// @Tags         albums
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      200  {object}  common.Response
// @Security     BearerAuth
// @Router       /albums/{id}/share-link [get]
func (h *Handler) ShareLinkHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	link, err := h.albums.GetShareLink(c.Request.Context(), albumID, middleware.CurrentUserID(c))
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"shareLink": link})
}

// AnalyzeAlbumHandler 提交相册云端分析
// @Summary      Analyze album
// @Description  Starts cloud analysis of every photo in the album and returns immediately
// @Tags         albums
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      202  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /albums/{id}/analyze [post]
func (h *Handler) AnalyzeAlbumHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.analysis.AnalyzeAlbum(c.Request.Context(), albumID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondAccepted(c, "Analysis started", gin.H{"albumId": albumID})
}
