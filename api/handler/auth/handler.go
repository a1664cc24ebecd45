// Package auth 注册与登录接口
package auth

import (
	"errors"
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/utils"
	"github.com/gin-gonic/gin"
)

// Handler 登录处理器
type Handler struct {
	loginService *auth.LoginService
}

// NewHandler 创建新的登录处理器
func NewHandler(loginService *auth.LoginService) *Handler {
	return &Handler{loginService: loginService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string   `json:"access_token"`
	AccessTokenExpiry int64    `json:"access_token_expiry"`
	UserID            uint     `json:"user_id"`
	Username          string   `json:"username"`
	Roles             []string `json:"roles"`
}

// RegisterHandler 注册
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.RegisterRequest  true  "Account"
// @Success      200      {object}  common.Response
// @Failure      400      {object}  common.Response
// @Router       /auth/register [post]
func (h *Handler) RegisterHandler(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.loginService.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondErr(c, err)
		return
	}
	common.RespondSuccessMessage(c, "User registered successfully", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"roles":    user.RoleNames(),
	})
}

// LoginHandler 登录
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Credentials"
// @Success      200      {object}  common.Response{data=loginResponse}
// @Failure      401      {object}  common.Response
// @Router       /auth/login [post]
func (h *Handler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.loginService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log := utils.Component("auth")
			log.Warn().Str("username", utils.SanitizeLogUsername(req.Username)).Str("ip", c.ClientIP()).Msg("login failed")
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		common.RespondErr(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
		UserID:            result.User.ID,
		Username:          result.User.Username,
		Roles:             result.User.RoleNames(),
	})
}
