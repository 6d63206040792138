// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bookhatch-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error

	// ListByStory 获取故事全部章节（按顺序升序）
	ListByStory(ctx context.Context, storyID string) ([]*entity.Chapter, error)

	// ListPublishedByStory 获取故事已发布章节（按顺序升序）
	ListPublishedByStory(ctx context.Context, storyID string) ([]*entity.Chapter, error)

	// UpdateOrders 批量写回章节顺序
	UpdateOrders(ctx context.Context, chapters []*entity.Chapter) error

	// SetPublishedByStory 批量设置故事全部章节的发布状态
	SetPublishedByStory(ctx context.Context, storyID string, published bool) error

	// DeleteByStory 删除故事的全部章节
	DeleteByStory(ctx context.Context, storyID string) error
}
