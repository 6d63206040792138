// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"slices"
	"strings"

	"bookhatch-api/internal/domain/entity"
)

// StorySearch 书目检索条件
type StorySearch struct {
	// Query 不区分大小写，匹配标题、作者、简介或类型的子串；空串匹配全部
	Query string
	// Genres 类型精确匹配其一；为空不过滤
	Genres []string
	// Statuses 允许的状态集合；为空不过滤
	Statuses []entity.StoryStatus
}

// Matches 判断故事是否满足检索条件，与 SQL 实现语义一致
func (s *StorySearch) Matches(story *entity.Story) bool {
	if s == nil {
		return true
	}
	if len(s.Statuses) > 0 && !slices.Contains(s.Statuses, story.Status) {
		return false
	}
	if len(s.Genres) > 0 && !slices.Contains(s.Genres, story.Genre) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(s.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{story.Title, story.AuthorName, story.Description, story.Genre} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// StoryRepository 故事仓储接口
type StoryRepository interface {
	// Create 创建故事
	Create(ctx context.Context, story *entity.Story) error

	// GetByID 根据 ID 获取故事
	GetByID(ctx context.Context, id string) (*entity.Story, error)

	// GetBySlug 根据 slug 获取故事
	GetBySlug(ctx context.Context, slug string) (*entity.Story, error)

	// Update 更新故事
	Update(ctx context.Context, story *entity.Story) error

	// Delete 删除故事
	Delete(ctx context.Context, id string) error

	// SlugExists 检查 slug 是否被其他故事占用
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// Search 检索书目，按标题升序
	Search(ctx context.Context, search *StorySearch, pagination Pagination) (*PagedResult[*entity.Story], error)

	// ListByAuthor 获取作者的全部故事，按更新时间倒序
	ListByAuthor(ctx context.Context, authorID string) ([]*entity.Story, error)

	// ListByAuthorName 按作者名获取故事
	ListByAuthorName(ctx context.Context, authorName string, statuses []entity.StoryStatus) ([]*entity.Story, error)
}
