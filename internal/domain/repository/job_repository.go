// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bookhatch-api/internal/domain/entity"
)

// JobFilter 任务过滤条件
type JobFilter struct {
	JobType   entity.JobType
	Status    entity.JobStatus
	ChapterID string
}

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// ListByUser 获取用户任务列表（按创建时间倒序）
	ListByUser(ctx context.Context, userID string, filter *JobFilter, pagination Pagination) (*PagedResult[*entity.GenerationJob], error)
}
