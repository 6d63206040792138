// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/utils"
)

// gin.Context 中的键
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserName  = "user_name"
	ContextKeyRole      = "role"
	ContextKeyTraceID   = "trace_id"
	ContextKeyRequestID = "request_id"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// SkipPaths 公开路径（前缀匹配），携带有效令牌时仍会注入用户信息
	SkipPaths []string
	// Enabled 是否启用认证
	Enabled bool
}

// DefaultSkipPaths 默认公开路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/v1/auth/",
	"/v1/search",
	"/v1/genres",
	"/v1/books/",
	"/v1/authors/",
}

// Auth JWT 认证中间件
func Auth(cfg AuthConfig, jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		public := isSkipped(c.Request.URL.Path, cfg.SkipPaths)

		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			if public {
				c.Next()
				return
			}
			dto.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseTokenOfType(token, utils.TokenTypeAccess)
		if err != nil {
			// 公开路径上令牌无效按匿名处理
			if public {
				c.Next()
				return
			}
			msg := "invalid token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "token expired"
			}
			dto.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserName, claims.Name)
		c.Set(ContextKeyRole, claims.Role)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func isSkipped(path string, skip []string) bool {
	for _, p := range skip {
		if path == p || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

// UserID 当前用户 ID，匿名时为空
func UserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
