// Package objects 本地与 WebDAV 存储的签名读取
package objects

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/gin-gonic/gin"
)

// Handler 签名对象读取
type Handler struct {
	store  storage.Provider
	signer *storage.URLSigner
}

// NewHandler 创建新的对象处理器
func NewHandler(store storage.Provider, signer *storage.URLSigner) *Handler {
	return &Handler{store: store, signer: signer}
}

// GetObject 校验签名后返回对象内容
// @Summary      Signed object read
// @Tags         objects
// @Produce      octet-stream
// @Param        key        path   string  true  "Object key"
// @Param        expires    query  int     true  "Unix expiry"
// @Param        signature  query  string  true  "HMAC signature"
// @Success      200  {file}    file
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Router       /objects/{key} [get]
func (h *Handler) GetObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if h.signer == nil {
		common.RespondError(c, http.StatusNotFound, "Object not found")
		return
	}

	switch err := h.signer.Verify(key, c.Query("expires"), c.Query("signature")); {
	case errors.Is(err, storage.ErrSignatureExpired):
		common.RespondError(c, http.StatusForbidden, "Link expired")
		return
	case err != nil:
		common.RespondError(c, http.StatusForbidden, "Invalid signature")
		return
	}

	data, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			common.RespondError(c, http.StatusNotFound, "Object not found")
			return
		}
		log := utils.Component("objects")
		log.Error().Err(err).Str("key", key).Msg("failed to read object")
		common.RespondError(c, http.StatusBadGateway, "Failed to read object")
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, utils.DetectContentType(data), data)
}
