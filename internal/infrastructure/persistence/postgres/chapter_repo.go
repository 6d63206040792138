// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"bookhatch-api/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapter entity.Chapter
	if err := db.First(&chapter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Chapter{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}

// ListByStory 获取故事全部章节
func (r *ChapterRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByStory")
	defer span.End()

	return r.list(ctx, getDB(ctx, r.client.db).Where("story_id = ?", storyID))
}

// ListPublishedByStory 获取故事已发布章节
func (r *ChapterRepository) ListPublishedByStory(ctx context.Context, storyID string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListPublishedByStory")
	defer span.End()

	return r.list(ctx, getDB(ctx, r.client.db).Where("story_id = ? AND is_published = ?", storyID, true))
}

func (r *ChapterRepository) list(ctx context.Context, query *gorm.DB) ([]*entity.Chapter, error) {
	var chapters []*entity.Chapter
	if err := query.Order("sort_order ASC").Order("created_at ASC").Find(&chapters).Error; err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// UpdateOrders 批量写回章节顺序
func (r *ChapterRepository) UpdateOrders(ctx context.Context, chapters []*entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.UpdateOrders")
	defer span.End()

	db := getDB(ctx, r.client.db)
	for _, ch := range chapters {
		if err := db.Model(&entity.Chapter{}).Where("id = ?", ch.ID).Update("sort_order", ch.Order).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to update chapter order: %w", err)
		}
	}
	return nil
}

// SetPublishedByStory 批量设置发布状态
func (r *ChapterRepository) SetPublishedByStory(ctx context.Context, storyID string, published bool) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.SetPublishedByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Chapter{}).Where("story_id = ?", storyID).Update("is_published", published).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set chapters published: %w", err)
	}
	return nil
}

// DeleteByStory 删除故事的全部章节
func (r *ChapterRepository) DeleteByStory(ctx context.Context, storyID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.DeleteByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Chapter{}, "story_id = ?", storyID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapters: %w", err)
	}
	return nil
}
