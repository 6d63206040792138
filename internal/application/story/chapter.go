package story

import (
	"context"
	"slices"
	"strings"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/metrics"
	"bookhatch-api/pkg/richtext"
)

// AddChapter 在末尾追加未发布的空章节
func (s *Service) AddChapter(ctx context.Context, userID, storyID, title string) (*entity.Chapter, error) {
	var chapter *entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		story, err := s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		existing, err := s.chapters.ListByStory(ctx, story.ID)
		if err != nil {
			return err
		}
		chapter = entity.NewChapter(story.ID, strings.TrimSpace(title), len(existing))
		if err := s.chapters.Create(ctx, chapter); err != nil {
			return err
		}
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// ChapterInput 章节更新参数，nil 字段不修改
type ChapterInput struct {
	Title   *string
	Content *string
}

// UpdateChapter 更新标题或内容，内容会被清洗并重算词数
func (s *Service) UpdateChapter(ctx context.Context, userID, chapterID string, in ChapterInput) (*entity.Chapter, error) {
	var chapter *entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var story *entity.Story
		var err error
		chapter, story, err = s.loadOwnedChapter(ctx, userID, chapterID)
		if err != nil {
			return err
		}
		if in.Title != nil {
			chapter.Title = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			html := s.sanitizer.Sanitize(*in.Content)
			chapter.SetContent(html, richtext.WordCount(html))
			metrics.ChapterWordCount.Observe(float64(chapter.WordCount))
		}
		if err := s.chapters.Update(ctx, chapter); err != nil {
			return err
		}
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// TogglePublish 切换章节发布状态
func (s *Service) TogglePublish(ctx context.Context, userID, chapterID string) (*entity.Chapter, error) {
	var chapter *entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var story *entity.Story
		var err error
		chapter, story, err = s.loadOwnedChapter(ctx, userID, chapterID)
		if err != nil {
			return err
		}
		chapter.TogglePublish()
		if err := s.chapters.Update(ctx, chapter); err != nil {
			return err
		}
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter 删除章节并将剩余章节重新编号
func (s *Service) DeleteChapter(ctx context.Context, userID, chapterID string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		chapter, story, err := s.loadOwnedChapter(ctx, userID, chapterID)
		if err != nil {
			return err
		}
		if err := s.chapters.Delete(ctx, chapter.ID); err != nil {
			return err
		}
		remaining, err := s.chapters.ListByStory(ctx, story.ID)
		if err != nil {
			return err
		}
		if changed := entity.Renumber(remaining); len(changed) > 0 {
			if err := s.chapters.UpdateOrders(ctx, changed); err != nil {
				return err
			}
		}
		return s.touch(ctx, story)
	})
}

// ReorderInput 排序参数：拖拽移动单个章节，或给出完整的章节 ID 顺序
type ReorderInput struct {
	SourceIndex      *int
	DestinationIndex *int
	ChapterIDs       []string
}

// ReorderChapters 调整章节顺序，返回排序后的章节
func (s *Service) ReorderChapters(ctx context.Context, userID, storyID string, in ReorderInput) ([]*entity.Chapter, error) {
	var ordered []*entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		story, err := s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		current, err := s.chapters.ListByStory(ctx, story.ID)
		if err != nil {
			return err
		}

		switch {
		case len(in.ChapterIDs) > 0:
			ordered, err = permute(current, in.ChapterIDs)
			if err != nil {
				return err
			}
		case in.SourceIndex == nil:
			return errors.InvalidParam("source_index or chapter_ids is required")
		case *in.SourceIndex < 0 || *in.SourceIndex >= len(current):
			return errors.InvalidParam("source_index out of range")
		case in.DestinationIndex == nil:
			ordered = current
			return nil
		default:
			ordered = entity.MoveChapter(current, *in.SourceIndex, *in.DestinationIndex)
		}

		changed := entity.Renumber(ordered)
		if len(changed) == 0 {
			return nil
		}
		if err := s.chapters.UpdateOrders(ctx, changed); err != nil {
			return err
		}
		return s.touch(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// permute 按 ids 重排章节，ids 必须恰好是现有章节的一个排列
func permute(current []*entity.Chapter, ids []string) ([]*entity.Chapter, error) {
	if len(ids) != len(current) {
		return nil, errors.InvalidParam("chapter_ids must list every chapter exactly once")
	}
	byID := make(map[string]*entity.Chapter, len(current))
	for _, ch := range current {
		byID[ch.ID] = ch
	}
	out := make([]*entity.Chapter, 0, len(ids))
	for _, id := range ids {
		ch, ok := byID[id]
		if !ok || slices.Contains(out, ch) {
			return nil, errors.InvalidParam("chapter_ids must list every chapter exactly once")
		}
		out = append(out, ch)
	}
	return out, nil
}

// PublishAll 发布故事的全部章节
func (s *Service) PublishAll(ctx context.Context, userID, storyID string) (*View, error) {
	var view *View
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		story, err := s.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		chapters, err := s.chapters.ListByStory(ctx, story.ID)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			return errors.ErrStoryHasNoChapters
		}
		if err := s.chapters.SetPublishedByStory(ctx, story.ID, true); err != nil {
			return err
		}
		for _, ch := range chapters {
			ch.IsPublished = true
		}
		story.Touch(chapters)
		if err := s.stories.Update(ctx, story); err != nil {
			return err
		}
		view = &View{Story: story, Chapters: chapters}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// loadOwnedChapter 获取章节并校验所属故事的归属
func (s *Service) loadOwnedChapter(ctx context.Context, userID, chapterID string) (*entity.Chapter, *entity.Story, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if chapter == nil {
		return nil, nil, errors.ErrChapterNotFound
	}
	story, err := s.LoadOwned(ctx, userID, chapter.StoryID)
	if err != nil {
		return nil, nil, err
	}
	return chapter, story, nil
}
