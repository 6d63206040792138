package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/internal/interfaces/http/middleware"
)

// StoryHandler 创作侧故事处理器
type StoryHandler struct {
	stories *story.Service
}

// NewStoryHandler 创建故事处理器
func NewStoryHandler(stories *story.Service) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// CreateStory 新建故事
// @Summary 新建故事
// @Tags Stories
// @Accept json
// @Produce json
// @Param body body dto.CreateStoryRequest true "故事信息"
// @Success 201 {object} dto.Response[dto.StoryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/stories [post]
func (h *StoryHandler) CreateStory(c *gin.Context) {
	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	s, err := h.stories.CreateStory(c.Request.Context(), middleware.UserID(c), story.CreateInput{
		Title:   req.Title,
		Summary: req.Summary,
		Genre:   req.Genre,
	})
	if err != nil {
		dto.HandleError(c, err, "failed to create story")
		return
	}
	dto.Created(c, dto.ToStoryResponse(s, nil))
}

// GetStory 作者视图，包含全部章节
// @Summary 获取故事
// @Tags Stories
// @Produce json
// @Param sid path string true "故事 ID"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/stories/{sid} [get]
func (h *StoryHandler) GetStory(c *gin.Context) {
	view, err := h.stories.GetStory(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to get story")
		return
	}
	dto.Success(c, dto.ToStoryView(view))
}

// UpdateSettings 部分更新故事设置
// @Summary 更新故事设置
// @Tags Stories
// @Accept json
// @Produce json
// @Param sid path string true "故事 ID"
// @Param body body dto.UpdateSettingsRequest true "设置"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/stories/{sid} [patch]
func (h *StoryHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	s, err := h.stories.UpdateSettings(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to update story")
		return
	}
	dto.Success(c, dto.ToStoryResponse(s, nil))
}

// DeleteStory 删除故事及其章节
// @Summary 删除故事
// @Tags Stories
// @Param sid path string true "故事 ID"
// @Success 204
// @Router /v1/stories/{sid} [delete]
func (h *StoryHandler) DeleteStory(c *gin.Context) {
	if err := h.stories.DeleteStory(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c)); err != nil {
		dto.HandleError(c, err, "failed to delete story")
		return
	}
	dto.NoContent(c)
}

// PublishAll 发布全部章节
// @Summary 发布全部章节
// @Tags Stories
// @Produce json
// @Param sid path string true "故事 ID"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/stories/{sid}/publish [post]
func (h *StoryHandler) PublishAll(c *gin.Context) {
	view, err := h.stories.PublishAll(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to publish story")
		return
	}
	dto.Success(c, dto.ToStoryView(view))
}

// AddChapter 新增章节
// @Summary 新增章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param sid path string true "故事 ID"
// @Param body body dto.AddChapterRequest false "章节标题"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/stories/{sid}/chapters [post]
func (h *StoryHandler) AddChapter(c *gin.Context) {
	var req dto.AddChapterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	ch, err := h.stories.AddChapter(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.Title)
	if err != nil {
		dto.HandleError(c, err, "failed to add chapter")
		return
	}
	dto.Created(c, dto.ToChapterResponse(ch))
}

// ReorderChapters 调整章节顺序
// @Summary 调整章节顺序
// @Tags Chapters
// @Accept json
// @Produce json
// @Param sid path string true "故事 ID"
// @Param body body dto.ReorderChaptersRequest true "排序"
// @Success 200 {object} dto.Response[[]dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/stories/{sid}/chapters/order [put]
func (h *StoryHandler) ReorderChapters(c *gin.Context) {
	var req dto.ReorderChaptersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapters, err := h.stories.ReorderChapters(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to reorder chapters")
		return
	}
	dto.Success(c, dto.ToChapterList(chapters))
}

// UpdateChapter 更新章节标题或内容
// @Summary 更新章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.UpdateChapterRequest true "章节"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/chapters/{cid} [patch]
func (h *StoryHandler) UpdateChapter(c *gin.Context) {
	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ch, err := h.stories.UpdateChapter(c.Request.Context(), middleware.UserID(c), dto.BindChapterID(c), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to update chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(ch))
}

// TogglePublish 切换章节发布状态
// @Summary 切换章节发布状态
// @Tags Chapters
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/chapters/{cid}/publish [post]
func (h *StoryHandler) TogglePublish(c *gin.Context) {
	ch, err := h.stories.TogglePublish(c.Request.Context(), middleware.UserID(c), dto.BindChapterID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to toggle chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(ch))
}

// DeleteChapter 删除章节，其余章节重新编号
// @Summary 删除章节
// @Tags Chapters
// @Param cid path string true "章节 ID"
// @Success 204
// @Router /v1/chapters/{cid} [delete]
func (h *StoryHandler) DeleteChapter(c *gin.Context) {
	if err := h.stories.DeleteChapter(c.Request.Context(), middleware.UserID(c), dto.BindChapterID(c)); err != nil {
		dto.HandleError(c, err, "failed to delete chapter")
		return
	}
	dto.NoContent(c)
}
