// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType 任务类型
type JobType string

const (
	JobTypeChapterAudio JobType = "chapter_audio"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// GenerationJob 异步生成任务（章节朗读）
type GenerationJob struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       string          `json:"user_id" gorm:"type:uuid;index;not null"`
	StoryID      string          `json:"story_id" gorm:"type:uuid;index"`
	ChapterID    string          `json:"chapter_id,omitempty" gorm:"type:uuid;index"`
	JobType      JobType         `json:"job_type" gorm:"type:varchar(32);not null"`
	Status       JobStatus       `json:"status" gorm:"type:varchar(32);index;not null"`
	InputParams  json.RawMessage `json:"input_params,omitempty" gorm:"type:jsonb"`
	OutputResult json.RawMessage `json:"output_result,omitempty" gorm:"type:jsonb"`
	ErrorMessage string          `json:"error_message,omitempty" gorm:"type:text"`
	Provider     string          `json:"provider,omitempty" gorm:"type:varchar(64)"`
	Model        string          `json:"model,omitempty" gorm:"type:varchar(128)"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	RetryCount   int             `json:"retry_count" gorm:"default:0"`
	Progress     int             `json:"progress" gorm:"default:0"` // 任务进度 (0-100)
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// NewGenerationJob 创建新任务
func NewGenerationJob(userID, storyID, chapterID string, jobType JobType, inputParams json.RawMessage) *GenerationJob {
	now := time.Now()
	return &GenerationJob{
		ID:          uuid.NewString(),
		UserID:      userID,
		StoryID:     storyID,
		ChapterID:   chapterID,
		JobType:     jobType,
		Status:      JobStatusPending,
		InputParams: inputParams,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsFinished 任务是否已结束
func (j *GenerationJob) IsFinished() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Start 开始执行任务
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Progress = 10
}

// Complete 完成任务
func (j *GenerationJob) Complete(result json.RawMessage) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputResult = result
	j.CompletedAt = &now
	j.Progress = 100
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Cancel 取消任务
func (j *GenerationJob) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// UpdateProgress 更新任务进度
func (j *GenerationJob) UpdateProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
}
