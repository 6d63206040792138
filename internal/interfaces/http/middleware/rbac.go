package middleware

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/interfaces/http/dto"
)

// RequireRole 角色检查中间件，当前用户不是指定角色之一时返回 403
func RequireRole(roles ...entity.UserRole) gin.HandlerFunc {
	roleSet := make(map[entity.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleStr := c.GetString(ContextKeyRole)
		if roleStr == "" {
			dto.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !roleSet[entity.UserRole(roleStr)] {
			dto.Forbidden(c, "role not allowed")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin 仅管理员
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entity.UserRoleAdmin)
}
