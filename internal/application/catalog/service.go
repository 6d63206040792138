// Package catalog 提供书目检索与作者页
package catalog

import (
	"context"
	"strconv"
	"strings"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/metrics"
)

// StatusFilter 读者侧状态筛选
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPublished StatusFilter = "published"
	StatusOngoing   StatusFilter = "ongoing"
)

// ParseStatusFilter 解析状态筛选，空串视为 all
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusOngoing:
		return StatusOngoing, nil
	default:
		return "", errors.InvalidParam("status must be one of all, published, ongoing")
	}
}

// statuses 返回允许的故事状态，草稿永远不出现在书目中
func (f StatusFilter) statuses() []entity.StoryStatus {
	switch f {
	case StatusPublished:
		return []entity.StoryStatus{entity.StoryStatusPublished}
	case StatusOngoing:
		return []entity.StoryStatus{entity.StoryStatusOngoing}
	default:
		return []entity.StoryStatus{entity.StoryStatusPublished, entity.StoryStatusOngoing}
	}
}

// Criteria 检索条件
type Criteria struct {
	Query    string
	Genres   []string
	Status   StatusFilter
	Page     int
	PageSize int
}

// Service 书目服务
type Service struct {
	tx       repository.Transactor
	stories  repository.StoryRepository
	chapters repository.ChapterRepository
}

// NewService 创建书目服务
func NewService(tx repository.Transactor, stories repository.StoryRepository, chapters repository.ChapterRepository) *Service {
	return &Service{tx: tx, stories: stories, chapters: chapters}
}

// Search 检索可见书目，按标题升序
func (s *Service) Search(ctx context.Context, c Criteria) (*repository.PagedResult[*entity.Story], error) {
	genres := make([]string, 0, len(c.Genres))
	for _, g := range c.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}

	search := &repository.StorySearch{
		Query:    strings.TrimSpace(c.Query),
		Genres:   genres,
		Statuses: c.Status.statuses(),
	}

	result, err := s.stories.Search(ctx, search, repository.NewPagination(c.Page, c.PageSize))
	if err != nil {
		return nil, err
	}

	metrics.CatalogSearchTotal.WithLabelValues(
		strconv.FormatBool(search.Query != ""),
		strconv.FormatBool(len(genres) > 0),
	).Inc()
	metrics.CatalogSearchResults.Observe(float64(result.Total))
	return result, nil
}

// Genres 返回类型列表
func (s *Service) Genres() []string {
	return entity.KnownGenres()
}

// BooksByAuthor 作者页：返回作者的可见作品
func (s *Service) BooksByAuthor(ctx context.Context, authorName string) ([]*entity.Story, error) {
	name := strings.TrimSpace(authorName)
	if name == "" {
		return nil, errors.InvalidParam("author name is required")
	}

	books, err := s.stories.ListByAuthorName(ctx, name, StatusAll.statuses())
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, errors.ErrNotFound.WithDetail("no books found for author " + name)
	}
	return books, nil
}
