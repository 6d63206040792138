package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/assist"
	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/internal/interfaces/http/middleware"
)

// AssistHandler 生成式辅助处理器
type AssistHandler struct {
	assist *assist.Service
}

// NewAssistHandler 创建辅助处理器
func NewAssistHandler(svc *assist.Service) *AssistHandler {
	return &AssistHandler{assist: svc}
}

// Recommend 按题材推荐书名
// @Summary 书目推荐
// @Tags Assist
// @Accept json
// @Produce json
// @Param body body dto.RecommendRequest true "题材"
// @Success 200 {object} dto.Response[assist.Recommendations]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/assist/recommendations [post]
func (h *AssistHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	recs, err := h.assist.Recommend(c.Request.Context(), middleware.UserID(c), req.Genres)
	if err != nil {
		dto.HandleError(c, err, "failed to get recommendations")
		return
	}
	dto.Success(c, recs)
}

// Continue 续写一段
// @Summary 续写
// @Tags Assist
// @Accept json
// @Produce json
// @Param body body dto.ContinueRequest true "已有文本"
// @Success 200 {object} dto.Response[dto.ContinueResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/assist/continue [post]
func (h *AssistHandler) Continue(c *gin.Context) {
	var req dto.ContinueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	paragraph, err := h.assist.Continue(c.Request.Context(), req.Text)
	if err != nil {
		dto.HandleError(c, err, "failed to continue story")
		return
	}
	dto.Success(c, &dto.ContinueResponse{Paragraph: paragraph})
}

// GenerateCover 生成封面
// @Summary 生成封面
// @Tags Assist
// @Accept json
// @Produce json
// @Param body body dto.CoverRequest true "封面参数"
// @Success 200 {object} dto.Response[assist.Cover]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/assist/cover [post]
func (h *AssistHandler) GenerateCover(c *gin.Context) {
	var req dto.CoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	cover, err := h.assist.GenerateCover(c.Request.Context(), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to generate cover")
		return
	}
	dto.Success(c, cover)
}

// GenerateStoryCover 为故事生成封面，缺省参数取自故事
// @Summary 生成故事封面
// @Tags Assist
// @Accept json
// @Produce json
// @Param sid path string true "故事 ID"
// @Param body body dto.CoverRequest false "封面参数"
// @Success 200 {object} dto.Response[dto.StoryCoverResponse]
// @Router /v1/stories/{sid}/cover [post]
func (h *AssistHandler) GenerateStoryCover(c *gin.Context) {
	var req dto.CoverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	cover, story, err := h.assist.GenerateStoryCover(c.Request.Context(), middleware.UserID(c), dto.BindStoryID(c), req.ToInput(), req.Apply)
	if err != nil {
		dto.HandleError(c, err, "failed to generate cover")
		return
	}
	resp := &dto.StoryCoverResponse{Cover: cover}
	if req.Apply {
		resp.Story = dto.ToStoryResponse(story, nil)
	}
	dto.Success(c, resp)
}
