package middleware

import (
	"net/http"
	"strings"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRolesKey    = "roles"
	AuthTypeKey        = "auth_type"

	AuthTypeJWT = "jwt"
)

// CombinedAuth 校验 Bearer JWT 并写入用户信息
func CombinedAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || strings.TrimSpace(token) == "" {
			common.RespondErrorAbort(c, http.StatusBadRequest, "Authorization field format error")
			return
		}
		if scheme != "Bearer" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			return
		}
		if jwtService == nil {
			common.RespondErrorAbort(c, http.StatusInternalServerError, "JWT service not initialized")
			return
		}

		claims, err := jwtService.ExtractClaims(strings.TrimSpace(token))
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRolesKey, claims.Roles)
		c.Set(AuthTypeKey, AuthTypeJWT)

		c.Next()
	}
}

// CurrentUserID 当前登录用户 ID
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserIDKey)
}
