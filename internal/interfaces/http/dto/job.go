package dto

import (
	"encoding/json"
	"time"

	"bookhatch-api/internal/domain/entity"
)

// JobResponse 任务响应
type JobResponse struct {
	ID          string          `json:"id"`
	StoryID     string          `json:"story_id"`
	ChapterID   string          `json:"chapter_id,omitempty"`
	JobType     string          `json:"job_type"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorMsg    string          `json:"error_msg,omitempty"`
	RetryCount  int             `json:"retry_count"`
	Progress    int             `json:"progress"`
	DurationMs  int             `json:"duration_ms,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}
	return &JobResponse{
		ID:          j.ID,
		StoryID:     j.StoryID,
		ChapterID:   j.ChapterID,
		JobType:     string(j.JobType),
		Status:      string(j.Status),
		Result:      j.OutputResult,
		ErrorMsg:    j.ErrorMessage,
		RetryCount:  j.RetryCount,
		Progress:    j.Progress,
		DurationMs:  j.DurationMs,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ToJobList 将领域实体列表转换为响应 DTO
func ToJobList(jobs []*entity.GenerationJob) []*JobResponse {
	out := make([]*JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToJobResponse(j))
	}
	return out
}
