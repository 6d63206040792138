package router

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/interfaces/http/middleware"
)

// RegisterV1Routes 注册 v1 版本路由，assistLimit 作用于生成式接口
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers, assistLimit gin.HandlerFunc) {
	// 认证
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// 读者侧书目
	v1.GET("/search", h.Catalog.Search)
	v1.GET("/genres", h.Catalog.Genres)
	v1.GET("/books/:slug", h.Catalog.GetBook)
	v1.GET("/authors/:name", h.Catalog.GetAuthor)

	// 当前用户
	users := v1.Group("/users")
	{
		users.GET("/me", h.User.GetMe)
		users.PUT("/me", h.User.UpdateMe)
		users.GET("/me/stories", h.User.ListMyStories)
	}

	// 创作侧故事
	stories := v1.Group("/stories")
	{
		stories.POST("", h.Story.CreateStory)
		stories.GET("/:sid", h.Story.GetStory)
		stories.PATCH("/:sid", h.Story.UpdateSettings)
		stories.DELETE("/:sid", h.Story.DeleteStory)
		stories.POST("/:sid/publish", h.Story.PublishAll)

		stories.POST("/:sid/chapters", h.Story.AddChapter)
		stories.PUT("/:sid/chapters/order", h.Story.ReorderChapters)

		stories.GET("/:sid/draft", h.Draft.LoadDraft)
		stories.PUT("/:sid/draft", h.Draft.SaveDraft)
		stories.DELETE("/:sid/draft", h.Draft.DiscardDraft)
		stories.POST("/:sid/draft/commit", h.Draft.CommitDraft)

		stories.POST("/:sid/cover", assistLimit, h.Assist.GenerateStoryCover)
	}

	// 章节
	chapters := v1.Group("/chapters")
	{
		chapters.PATCH("/:cid", h.Story.UpdateChapter)
		chapters.DELETE("/:cid", h.Story.DeleteChapter)
		chapters.POST("/:cid/publish", h.Story.TogglePublish)
		chapters.POST("/:cid/audio", assistLimit, h.Job.RequestNarration)
	}

	// 生成式辅助
	assist := v1.Group("/assist", assistLimit)
	{
		assist.POST("/recommendations", h.Assist.Recommend)
		assist.POST("/continue", h.Assist.Continue)
		assist.POST("/cover", h.Assist.GenerateCover)
	}

	// 任务
	jobs := v1.Group("/jobs")
	{
		jobs.GET("", h.Job.ListJobs)
		jobs.GET("/:jid", h.Job.GetJob)
		jobs.DELETE("/:jid", h.Job.CancelJob)
	}

	// 管理
	admin := v1.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/catalog/seed", h.Catalog.Seed)
	}
}
