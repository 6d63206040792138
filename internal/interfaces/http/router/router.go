// Package router 提供 HTTP 路由配置
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/infrastructure/persistence/redis"
	"bookhatch-api/internal/interfaces/http/handler"
	"bookhatch-api/internal/interfaces/http/middleware"
	"bookhatch-api/pkg/utils"
)

// Handlers 路由使用的全部处理器
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Catalog *handler.CatalogHandler
	Story   *handler.StoryHandler
	Draft   *handler.DraftHandler
	Assist  *handler.AssistHandler
	Job     *handler.JobHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	jwt      *utils.JWTManager
	limiter  middleware.RateLimiter
	handlers *Handlers
}

// New 创建新的路由器，limiter 为 nil 时不限流
func New(cfg *config.Config, jwt *utils.JWTManager, limiter middleware.RateLimiter, handlers *Handlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		jwt:      jwt,
		limiter:  limiter,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))

	r.engine.Use(middleware.Auth(middleware.AuthConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultSkipPaths,
	}, r.jwt))

	rl := r.cfg.Security.RateLimit
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: rl.Enabled,
		Scope:   "global",
		Limit:   rl.RequestsPerSecond,
		Window:  time.Second,
	}, r.limiter, redis.BuildRateLimitKey))
}

func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	rl := r.cfg.Security.RateLimit
	assistLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: rl.Enabled,
		Scope:   "assist",
		Limit:   rl.AssistPerMinute,
		Window:  time.Minute,
	}, r.limiter, redis.BuildRateLimitKey)

	RegisterV1Routes(r.engine.Group("/v1"), h, assistLimit)
}
