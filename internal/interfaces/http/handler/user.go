package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/account"
	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/internal/interfaces/http/middleware"
)

// UserHandler 当前用户处理器
type UserHandler struct {
	accounts *account.Service
	stories  *story.Service
}

// NewUserHandler 创建当前用户处理器
func NewUserHandler(accounts *account.Service, stories *story.Service) *UserHandler {
	return &UserHandler{accounts: accounts, stories: stories}
}

// GetMe 获取个人资料
// @Summary 获取个人资料
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Router /v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.accounts.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to get profile")
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// UpdateMe 更新个人资料
// @Summary 更新个人资料
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.UpdateProfileRequest true "资料"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.accounts.UpdateMe(c.Request.Context(), middleware.UserID(c), req.ToInput())
	if err != nil {
		dto.HandleError(c, err, "failed to update profile")
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// ListMyStories 当前用户的全部故事
// @Summary 我的故事
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[[]dto.StoryResponse]
// @Router /v1/users/me/stories [get]
func (h *UserHandler) ListMyStories(c *gin.Context) {
	stories, err := h.stories.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to list stories")
		return
	}
	out := make([]*dto.StoryResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, dto.ToStoryResponse(s, nil))
	}
	dto.Success(c, out)
}
