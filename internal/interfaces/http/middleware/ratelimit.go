package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool
	// Scope 限流键的作用域，不同路由组互不影响
	Scope string
	Limit int
	// Window 窗口长度
	Window time.Duration
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 滑动窗口限流中间件，已登录按用户，匿名按客户端 IP
func RateLimit(cfg RateLimitConfig, limiter RateLimiter, keyFn func(scope, subject string) string) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.Scope == "" {
		cfg.Scope = "global"
	}

	return func(c *gin.Context) {
		subject := UserID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), keyFn(cfg.Scope, subject), cfg.Limit, cfg.Window)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			dto.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
