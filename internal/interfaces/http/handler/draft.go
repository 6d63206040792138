package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/draft"
	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/internal/interfaces/http/middleware"
)

// DraftHandler 草稿处理器
type DraftHandler struct {
	drafts *draft.Service
}

// NewDraftHandler 创建草稿处理器
func NewDraftHandler(drafts *draft.Service) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// SaveDraft 自动保存草稿
// @Summary 保存草稿
// @Tags Drafts
// @Accept json
// @Produce json
// @Param sid path string true "故事 ID"
// @Param body body dto.SaveDraftRequest true "草稿"
// @Success 200 {object} dto.Response[entity.Draft]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/stories/{sid}/draft [put]
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	d, err := h.drafts.Save(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to save draft")
		return
	}
	dto.Success(c, d)
}

// LoadDraft 读取草稿，无草稿时返回当前发布状态的快照
// @Summary 读取草稿
// @Tags Drafts
// @Produce json
// @Param sid path string true "故事 ID"
// @Success 200 {object} dto.Response[draft.Loaded]
// @Router /v1/stories/{sid}/draft [get]
func (h *DraftHandler) LoadDraft(c *gin.Context) {
	loaded, err := h.drafts.Load(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to load draft")
		return
	}
	dto.Success(c, loaded)
}

// CommitDraft 提交草稿
// @Summary 提交草稿
// @Tags Drafts
// @Produce json
// @Param sid path string true "故事 ID"
// @Param force query bool false "忽略版本冲突"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/stories/{sid}/draft/commit [post]
func (h *DraftHandler) CommitDraft(c *gin.Context) {
	var req dto.CommitDraftRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}
	if !req.Force && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	view, err := h.drafts.Commit(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.Force)
	if err != nil {
		dto.HandleError(c, err, "failed to commit draft")
		return
	}
	dto.Success(c, dto.ToStoryView(view))
}

// DiscardDraft 丢弃草稿
// @Summary 丢弃草稿
// @Tags Drafts
// @Param sid path string true "故事 ID"
// @Success 204
// @Router /v1/stories/{sid}/draft [delete]
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	if err := h.drafts.Discard(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c)); err != nil {
		dto.HandleError(c, err, "failed to discard draft")
		return
	}
	dto.NoContent(c)
}
