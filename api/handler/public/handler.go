// Package public 分享链接访客接口，凭分享 token 访问
package public

import (
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/albums"
	"github.com/anoixa/photo-share/internal/photos"
	"github.com/anoixa/photo-share/internal/share"
	"github.com/gin-gonic/gin"
)

// Handler 访客处理器
type Handler struct {
	albums *albums.Service
	photos *photos.Service
	guard  *share.Guard
}

// NewHandler 创建新的访客处理器
func NewHandler(albumSvc *albums.Service, photoSvc *photos.Service, guard *share.Guard) *Handler {
	return &Handler{albums: albumSvc, photos: photoSvc, guard: guard}
}

// SharedAlbumResponse 分享相册内容
type SharedAlbumResponse struct {
	Album  *models.Album      `json:"album"`
	Photos []photos.PhotoView `json:"photos"`
}

type guestCommentRequest struct {
	CommenterName string `json:"commenterName" binding:"required,max=100,notblank"`
	Content       string `json:"content" binding:"required,max=2000,notblank"`
}

// GetSharedAlbumHandler 按分享 token 获取相册与照片
// @Summary      Shared album
// @Tags         public
// @Produce      json
// @Param        shareToken  path      string  true  "Share token"
// @Success      200         {object}  common.Response{data=SharedAlbumResponse}
// @Failure      404         {object}  common.Response
// @Router       /public/album/{shareToken} [get]
func (h *Handler) GetSharedAlbumHandler(c *gin.Context) {
	ctx := c.Request.Context()
	album, err := h.albums.GetAlbumByShareToken(ctx, c.Param("shareToken"))
	if err != nil {
		common.RespondErr(c, err)
		return
	}

	views, err := h.photos.ListPhotosForAlbum(ctx, album.ID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, SharedAlbumResponse{Album: album, Photos: views})
}

// ToggleLikeHandler 切换喜欢状态
// @Summary      Toggle like
// @Tags         public
// @Produce      json
// @Param        shareToken  path      string  true  "Share token"
// @Param        photoId     path      int     true  "Photo ID"
// @Success      200         {object}  common.Response
// @Failure      403         {object}  common.Response
// @Router       /public/like/{shareToken}/{photoId} [post]
func (h *Handler) ToggleLikeHandler(c *gin.Context) {
	photoID, ok := h.guarded(c)
	if !ok {
		return
	}

	photo, err := h.photos.ToggleLike(c.Request.Context(), photoID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"photoId": photo.ID, "liked": photo.Liked})
}

// ListCommentsHandler 访客查看评论
// @Summary      List comments
// @Tags         public
// @Produce      json
// @Param        shareToken  path      string  true  "Share token"
// @Param        photoId     path      int     true  "Photo ID"
// @Success      200         {object}  common.Response{data=[]models.Comment}
// @Failure      403         {object}  common.Response
// @Router       /public/comments/{shareToken}/{photoId} [get]
func (h *Handler) ListCommentsHandler(c *gin.Context) {
	photoID, ok := h.guarded(c)
	if !ok {
		return
	}

	comments, err := h.photos.ListComments(c.Request.Context(), photoID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, comments)
}

// AddCommentHandler 访客评论
// @Summary      Add comment
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        shareToken  path      string               true  "Share token"
// @Param        photoId     path      int                  true  "Photo ID"
// @Param        request     body      guestCommentRequest  true  "Comment"
// @Success      200         {object}  common.Response{data=models.Comment}
// @Failure      403         {object}  common.Response
// @Router       /public/comments/{shareToken}/{photoId} [post]
func (h *Handler) AddCommentHandler(c *gin.Context) {
	photoID, ok := h.guarded(c)
	if !ok {
		return
	}

	var req guestCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.photos.AddComment(c.Request.Context(), photoID, req.CommenterName, req.Content)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, comment)
}

// guarded 校验照片属于 token 对应的相册，否则 403
func (h *Handler) guarded(c *gin.Context) (uint, bool) {
	photoID, ok := common.ParseIDParam(c, "photoId")
	if !ok {
		return 0, false
	}
	if !h.guard.IsPhotoInSharedAlbum(c.Request.Context(), c.Param("shareToken"), photoID) {
		common.RespondError(c, http.StatusForbidden, "Photo is not part of this shared album")
		return 0, false
	}
	return photoID, true
}
