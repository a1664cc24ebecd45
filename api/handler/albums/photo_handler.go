package albums

import (
	"fmt"
	"io"
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/photos"
	"github.com/anoixa/photo-share/utils/format"
	"github.com/anoixa/photo-share/utils/validator"
	"github.com/gin-gonic/gin"
)

type syncArchivesRequest struct {
	Items []photos.ArchiveItem `json:"items" binding:"required,min=1,dive"`
}

// ListPhotosHandler 相册全部照片（签名 URL）
// @Summary      List album photos
// @Tags         photos
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      200  {object}  common.Response{data=[]photos.PhotoView}
// @Security     BearerAuth
// @Router       /albums/{id}/photos [get]
func (h *Handler) ListPhotosHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.albums.GetAlbumForOwner(ctx, albumID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}

	views, err := h.photos.ListPhotosForAlbum(ctx, albumID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, views)
}

// ListLikedPhotosHandler 相册中被喜欢的照片
// @Summary      List liked photos
// @Tags         photos
// @Produce      json
// @Param        id   path      int  true  "Album ID"
// @Success      200  {object}  common.Response{data=[]photos.PhotoView}
// @Security     BearerAuth
// @Router       /albums/{id}/liked-photos [get]
func (h *Handler) ListLikedPhotosHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.albums.GetAlbumForOwner(ctx, albumID, middleware.CurrentUserID(c)); err != nil {
		common.RespondErr(c, err)
		return
	}

	views, err := h.photos.ListLikedPhotosForAlbum(ctx, albumID)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, views)
}

// ExportLikedHandler 导出喜欢的照片为 CSV
// @Summary      Export liked photos
// @Tags         photos
// @Produce      text/csv
// @Param        id   path  int  true  "Album ID"
// @Success      200  {file}  file
// @Security     BearerAuth
// @Router       /albums/{id}/liked-photos/export [get]
func (h *Handler) ExportLikedHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := h.albums.ExportLikedCSV(c.Request.Context(), albumID, middleware.CurrentUserID(c))
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="album-%d-liked.csv"`, albumID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// UploadPhotoHandler 上传预览图
// @Summary      Upload preview photo
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Album ID"
// @Param        file  formData  file  true  "Image file"
// @Success      200   {object}  common.Response{data=models.Photo}
// @Failure      400   {object}  common.Response
// @Failure      502   {object}  common.Response
// @Security     BearerAuth
// @Router       /albums/{id}/photos [post]
func (h *Handler) UploadPhotoHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	data, filename, ok := ReadUploadedFile(c, h.maxSize)
	if !ok {
		return
	}

	photo, err := h.photos.UploadPreview(c.Request.Context(), albumID, middleware.CurrentUserID(c), data, filename)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccess(c, photo)
}

// SyncArchivesHandler 批量导入本地归档
// @Summary      Sync archives
// @Tags         photos
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Album ID"
// @Param        request  body      syncArchivesRequest  true  "Archive items"
// @Success      200      {object}  common.Response{data=[]models.Photo}
// @Security     BearerAuth
// @Router       /albums/{id}/archives [post]
func (h *Handler) SyncArchivesHandler(c *gin.Context) {
	albumID, ok := common.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req syncArchivesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.photos.SyncArchives(c.Request.Context(), albumID, middleware.CurrentUserID(c), req.Items)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccessMessage(c, fmt.Sprintf("%d of %d archives saved", len(saved), len(req.Items)), saved)
}

// ReadUploadedFile 读取 multipart 字段 file，失败时直接写入 400
func ReadUploadedFile(c *gin.Context, maxSize int64) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "File is required")
		return nil, "", false
	}
	if maxSize > 0 && fileHeader.Size > maxSize {
		common.RespondError(c, http.StatusBadRequest, "File exceeds "+format.HumanReadableSize(maxSize)+" limit")
		return nil, "", false
	}
	if fileHeader.Size == 0 {
		common.RespondError(c, http.StatusBadRequest, "File is empty")
		return nil, "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to open uploaded file")
		return nil, "", false
	}
	defer f.Close()

	if ok, _, err := validator.IsImage(f); err != nil || !ok {
		common.RespondError(c, http.StatusBadRequest, "File is not a supported image")
		return nil, "", false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}
