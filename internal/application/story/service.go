// Package story 提供作者侧的故事与章节编辑服务
package story

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/richtext"
)

// Service 故事服务
type Service struct {
	tx        repository.Transactor
	stories   repository.StoryRepository
	chapters  repository.ChapterRepository
	users     repository.UserRepository
	drafts    repository.DraftRepository
	sanitizer *richtext.Sanitizer
}

// NewService 创建故事服务，drafts 可为 nil
func NewService(
	tx repository.Transactor,
	stories repository.StoryRepository,
	chapters repository.ChapterRepository,
	users repository.UserRepository,
	drafts repository.DraftRepository,
) *Service {
	return &Service{
		tx:        tx,
		stories:   stories,
		chapters:  chapters,
		users:     users,
		drafts:    drafts,
		sanitizer: richtext.NewSanitizer(),
	}
}

// View 故事及其章节
type View struct {
	*entity.Story
	Chapters []*entity.Chapter `json:"chapters"`
}

// CreateInput 新建故事参数
type CreateInput struct {
	Title   string
	Summary string
	Genre   string
}

// CreateStory 新建草稿故事，作者为当前用户
func (s *Service) CreateStory(ctx context.Context, userID string, in CreateInput) (*entity.Story, error) {
	title := strings.TrimSpace(in.Title)
	summary := strings.TrimSpace(in.Summary)
	genre := strings.TrimSpace(in.Genre)
	if title == "" || summary == "" || genre == "" {
		return nil, errors.InvalidParam("missing information")
	}
	if !entity.IsKnownGenre(genre) {
		return nil, errors.InvalidParam("unknown genre " + genre)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}

	story := entity.NewStory(user.ID, user.Name, title, summary, genre)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		slug, err := UniqueSlug(ctx, s.stories, title, "")
		if err != nil {
			return err
		}
		story.Slug = slug
		return s.stories.Create(ctx, story)
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicateKey) {
			// 并发创建同名故事
			return nil, errors.ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	logger.Info(ctx, "story created", "story_id", story.ID, "slug", story.Slug)
	return story, nil
}

// GetStory 作者视图：故事及全部章节
func (s *Service) GetStory(ctx context.Context, userID, storyID string) (*View, error) {
	story, err := s.LoadOwned(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.chapters.ListByStory(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	return &View{Story: story, Chapters: chapters}, nil
}

// ReadStory 读者视图：按 slug 返回故事及已发布章节
func (s *Service) ReadStory(ctx context.Context, slug string) (*View, error) {
	story, err := s.stories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, errors.ErrStoryNotFound
	}
	chapters, err := s.chapters.ListPublishedByStory(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	return &View{Story: story, Chapters: chapters}, nil
}

// ListMine 当前用户的全部故事
func (s *Service) ListMine(ctx context.Context, userID string) ([]*entity.Story, error) {
	stories, err := s.stories.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []*entity.Story{}
	}
	return stories, nil
}

// SettingsInput 故事设置，nil 字段不修改
type SettingsInput struct {
	Title                 *string
	Genre                 *string
	Description           *string
	LongDescription       *string
	Keywords              []string
	KeywordsSet           bool
	AudioNarrationEnabled *bool
}

// UpdateSettings 部分更新故事设置，标题变化时重新生成 slug
func (s *Service) UpdateSettings(ctx context.Context, userID, storyID string, in SettingsInput) (*entity.Story, error) {
	var story *entity.Story
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		story, err = s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		if err := ApplySettings(ctx, s.stories, story, in); err != nil {
			return err
		}
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, SlugConflict(err)
	}
	return story, nil
}

// SlugConflict 唯一索引冲突说明 slug 被并发占用，转换为 ErrSlugConflict
func SlugConflict(err error) error {
	if stderrors.Is(err, repository.ErrDuplicateKey) {
		return errors.ErrSlugConflict
	}
	return err
}

// ApplySettings 校验并写入设置字段，不落库
func ApplySettings(ctx context.Context, stories repository.StoryRepository, story *entity.Story, in SettingsInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return errors.InvalidParam("title must not be empty")
		}
		if title != story.Title {
			slug, err := UniqueSlug(ctx, stories, title, story.ID)
			if err != nil {
				return err
			}
			story.Title = title
			story.Slug = slug
		}
	}
	if in.Genre != nil {
		genre := strings.TrimSpace(*in.Genre)
		if !entity.IsKnownGenre(genre) {
			return errors.InvalidParam("unknown genre " + genre)
		}
		story.Genre = genre
	}
	if in.Description != nil {
		story.Description = strings.TrimSpace(*in.Description)
	}
	if in.LongDescription != nil {
		story.LongDescription = strings.TrimSpace(*in.LongDescription)
	}
	if in.KeywordsSet {
		story.Keywords = normalizeKeywords(in.Keywords)
	}
	if in.AudioNarrationEnabled != nil {
		story.AudioNarrationEnabled = *in.AudioNarrationEnabled
	}
	return nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// SetCover 更新封面地址
func (s *Service) SetCover(ctx context.Context, userID, storyID, coverURL string) (*entity.Story, error) {
	var story *entity.Story
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		story, err = s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		story.CoverImage = coverURL
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

// DeleteStory 删除故事及其章节
func (s *Service) DeleteStory(ctx context.Context, userID, storyID string) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		story, err := s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		if err := s.chapters.DeleteByStory(ctx, story.ID); err != nil {
			return err
		}
		return s.stories.Delete(ctx, story.ID)
	})
	if err != nil {
		return err
	}

	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, userID, storyID); err != nil {
			logger.Warn(ctx, "failed to delete draft of removed story", "story_id", storyID, "error", err.Error())
		}
	}
	logger.Info(ctx, "story deleted", "story_id", storyID)
	return nil
}

// LoadOwned 获取故事并校验归属
func (s *Service) LoadOwned(ctx context.Context, userID, storyID string) (*entity.Story, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, errors.ErrStoryNotFound
	}
	if !story.IsOwnedBy(userID) {
		return nil, errors.ErrForbidden
	}
	return story, nil
}

// touch 按当前章节重算状态并递增版本
func (s *Service) touch(ctx context.Context, story *entity.Story) error {
	chapters, err := s.chapters.ListByStory(ctx, story.ID)
	if err != nil {
		return err
	}
	story.Touch(chapters)
	return s.stories.Update(ctx, story)
}
