package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/assist"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/internal/interfaces/http/dto"
	"bookhatch-api/internal/interfaces/http/middleware"
)

// JobHandler 朗读任务处理器
type JobHandler struct {
	narration *assist.NarrationService
}

// NewJobHandler 创建任务处理器
func NewJobHandler(narration *assist.NarrationService) *JobHandler {
	return &JobHandler{narration: narration}
}

// RequestNarration 为章节创建朗读任务
// @Summary 章节朗读
// @Tags Jobs
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "故事未开启朗读"
// @Router /v1/chapters/{cid}/audio [post]
func (h *JobHandler) RequestNarration(c *gin.Context) {
	job, err := h.narration.RequestNarration(c.Request.Context(), middleware.UserID(c), dto.BindChapterID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to request narration")
		return
	}
	dto.Accepted(c, dto.ToJobResponse(job))
}

// ListJobs 当前用户的任务
// @Summary 任务列表
// @Tags Jobs
// @Produce json
// @Param status query string false "任务状态"
// @Param chapter_id query string false "章节 ID"
// @Success 200 {object} dto.Response[[]dto.JobResponse]
// @Router /v1/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := &repository.JobFilter{
		Status:    entity.JobStatus(c.Query("status")),
		ChapterID: c.Query("chapter_id"),
	}
	result, err := h.narration.ListJobs(c.Request.Context(), middleware.UserID(c), filter, dto.BindPage(c))
	if err != nil {
		dto.HandleError(c, err, "failed to list jobs")
		return
	}
	dto.SuccessWithPage(c, dto.ToJobList(result.Items), dto.PageMetaOf(result))
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.narration.GetJob(c.Request.Context(), middleware.UserID(c), dto.BindJobID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to get job")
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}

// CancelJob 取消任务
// @Summary 取消任务
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "任务已结束"
// @Router /v1/jobs/{jid} [delete]
func (h *JobHandler) CancelJob(c *gin.Context) {
	job, err := h.narration.CancelJob(c.Request.Context(), middleware.UserID(c), dto.BindJobID(c))
	if err != nil {
		dto.HandleError(c, err, "failed to cancel job")
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}
