// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
)

// StoryRepository 故事仓储实现
type StoryRepository struct {
	client *Client
}

// NewStoryRepository 创建故事仓储
func NewStoryRepository(client *Client) *StoryRepository {
	return &StoryRepository{client: client}
}

// Create 创建故事
func (r *StoryRepository) Create(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(story).Error; err != nil {
		span.RecordError(err)
		return translateError("failed to create story", err)
	}
	return nil
}

// GetByID 根据 ID 获取故事
func (r *StoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var story entity.Story
	if err := db.First(&story, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &story, nil
}

// GetBySlug 根据 slug 获取故事
func (r *StoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.GetBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var story entity.Story
	if err := db.First(&story, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story by slug: %w", err)
	}
	return &story, nil
}

// Update 更新故事
func (r *StoryRepository) Update(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(story).Error; err != nil {
		span.RecordError(err)
		return translateError("failed to update story", err)
	}
	return nil
}

// Delete 删除故事
func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Story{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// SlugExists 检查 slug 是否被其他故事占用
func (r *StoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.SlugExists")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check slug exists: %w", err)
	}
	return count > 0, nil
}

// Search 检索书目
func (r *StoryRepository) Search(ctx context.Context, search *repository.StorySearch, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Search")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{})

	if search != nil {
		if q := strings.ToLower(strings.TrimSpace(search.Query)); q != "" {
			pattern := "%" + escapeLike(q) + "%"
			query = query.Where(
				"LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(author_name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(genre) LIKE ? ESCAPE '\\'",
				pattern, pattern, pattern, pattern,
			)
		}
		if len(search.Genres) > 0 {
			query = query.Where("genre IN ?", search.Genres)
		}
		if len(search.Statuses) > 0 {
			query = query.Where("status IN ?", search.Statuses)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order(titleOrder(db)).Order("id ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// ListByAuthor 获取作者的全部故事
func (r *StoryRepository) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByAuthor")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var stories []*entity.Story
	if err := db.Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories by author: %w", err)
	}
	return stories, nil
}

// ListByAuthorName 按作者名获取故事
func (r *StoryRepository) ListByAuthorName(ctx context.Context, authorName string, statuses []entity.StoryStatus) ([]*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByAuthorName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("author_name = ?", authorName)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var stories []*entity.Story
	if err := query.Order(titleOrder(db)).Order("id ASC").Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories by author name: %w", err)
	}
	return stories, nil
}

// titleOrder 按小写标题的字节序排序，PostgreSQL 下固定使用 "C" 排序规则
func titleOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return `LOWER(title) COLLATE "C" ASC`
	}
	return "LOWER(title) ASC"
}

// escapeLike 转义 LIKE 通配符，使查询按字面子串匹配
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
