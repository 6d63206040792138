// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bookhatch-api/internal/domain/entity"
)

// DraftRepository 草稿缓冲接口
type DraftRepository interface {
	// Save 保存草稿并刷新过期时间
	Save(ctx context.Context, draft *entity.Draft) error

	// Get 获取草稿，不存在时返回 nil
	Get(ctx context.Context, userID, storyID string) (*entity.Draft, error)

	// Delete 删除草稿
	Delete(ctx context.Context, userID, storyID string) error
}
