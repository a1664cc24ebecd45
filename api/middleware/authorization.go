package middleware

import (
	"net/http"
	"slices"

	"github.com/anoixa/photo-share/api/common"
	"github.com/gin-gonic/gin"
)

// Authorize 检查context中的认证类型是否在允许的列表中
func Authorize(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authType := c.GetString(AuthTypeKey)
		if authType == "" {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Not authenticated.")
			return
		}
		if !slices.Contains(allowedTypes, authType) {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. You do not have permission to access this resource with this authentication method.")
			return
		}
		c.Next()
	}
}

// RequireRole 用户至少拥有其中一个角色
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rolesVal, exists := c.Get(ContextRolesKey)
		if !exists {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Role information not found.")
			return
		}

		roles, ok := rolesVal.([]string)
		if !ok {
			common.RespondErrorAbort(c, http.StatusInternalServerError, "Internal error: invalid role type in context.")
			return
		}

		for _, allowed := range allowedRoles {
			if slices.Contains(roles, allowed) {
				c.Next()
				return
			}
		}

		common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. You do not have the required role to access this resource.")
	}
}
