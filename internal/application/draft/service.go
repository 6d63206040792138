// Package draft 在 Redis 草稿缓冲与文档存储之间同步故事编辑状态
package draft

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/metrics"
	"bookhatch-api/pkg/richtext"
)

// 草稿来源
const (
	SourceDraft  = "draft"
	SourceRemote = "remote"
)

// StoryOwner 归属校验
type StoryOwner interface {
	LoadOwned(ctx context.Context, userID, storyID string) (*entity.Story, error)
}

// Service 草稿服务
type Service struct {
	tx        repository.Transactor
	owner     StoryOwner
	stories   repository.StoryRepository
	chapters  repository.ChapterRepository
	drafts    repository.DraftRepository
	sanitizer *richtext.Sanitizer
	now       func() time.Time
}

// NewService 创建草稿服务
func NewService(
	tx repository.Transactor,
	owner StoryOwner,
	stories repository.StoryRepository,
	chapters repository.ChapterRepository,
	drafts repository.DraftRepository,
) *Service {
	return &Service{
		tx:        tx,
		owner:     owner,
		stories:   stories,
		chapters:  chapters,
		drafts:    drafts,
		sanitizer: richtext.NewSanitizer(),
		now:       time.Now,
	}
}

// SaveInput 自动保存参数，BaseVersion 为 0 时取当前版本
type SaveInput struct {
	BaseVersion int
	Settings    entity.DraftSettings
	Chapters    []entity.DraftChapter
}

// Loaded 读取结果
type Loaded struct {
	Draft         *entity.Draft `json:"draft"`
	Source        string        `json:"source"`
	Stale         bool          `json:"stale"`
	RemoteVersion int           `json:"remote_version"`
}

// Save 写入草稿缓冲
func (s *Service) Save(ctx context.Context, userID, storyID string, in SaveInput) (*entity.Draft, error) {
	st, err := s.owner.LoadOwned(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(in.Chapters))
	chapters := make([]entity.DraftChapter, 0, len(in.Chapters))
	for _, ch := range in.Chapters {
		if ch.ID != "" {
			if seen[ch.ID] {
				return nil, errors.InvalidParam("duplicate chapter id " + ch.ID)
			}
			seen[ch.ID] = true
		}
		ch.Content = s.sanitizer.Sanitize(ch.Content)
		chapters = append(chapters, ch)
	}

	settings, err := fillSettings(in.Settings, st)
	if err != nil {
		return nil, err
	}

	d := &entity.Draft{
		StoryID:     st.ID,
		UserID:      userID,
		BaseVersion: in.BaseVersion,
		Settings:    settings,
		Chapters:    chapters,
		SavedAt:     s.now(),
	}
	if d.BaseVersion <= 0 {
		d.BaseVersion = st.Version
	}

	if err := s.drafts.Save(ctx, d); err != nil {
		metrics.DraftSavesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	metrics.DraftSavesTotal.WithLabelValues("ok").Inc()
	return d, nil
}

// Load 读取草稿；没有草稿时返回文档存储的快照
func (s *Service) Load(ctx context.Context, userID, storyID string) (*Loaded, error) {
	st, err := s.owner.LoadOwned(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	d, err := s.drafts.Get(ctx, userID, st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if d != nil {
		return &Loaded{
			Draft:         d,
			Source:        SourceDraft,
			Stale:         st.Version > d.BaseVersion,
			RemoteVersion: st.Version,
		}, nil
	}

	chapters, err := s.chapters.ListByStory(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	return &Loaded{
		Draft:         entity.SnapshotDraft(userID, st, chapters),
		Source:        SourceRemote,
		RemoteVersion: st.Version,
	}, nil
}

// Commit 在一个事务中将草稿写入文档存储，成功后删除草稿。
// 文档存储版本已超过草稿基线时，除非 force，否则返回冲突。
func (s *Service) Commit(ctx context.Context, userID, storyID string, force bool) (*story.View, error) {
	var view *story.View
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		st, err := s.owner.LoadOwned(ctx, userID, storyID)
		if err != nil {
			return err
		}
		d, err := s.drafts.Get(ctx, userID, st.ID)
		if err != nil {
			return fmt.Errorf("failed to load draft: %w", err)
		}
		if d == nil {
			return errors.ErrDraftNotFound
		}
		if st.Version > d.BaseVersion && !force {
			return errors.ErrDraftConflict.WithDetail(
				fmt.Sprintf("draft base version %d, current version %d", d.BaseVersion, st.Version))
		}

		if err := story.ApplySettings(ctx, s.stories, st, settingsInput(d.Settings)); err != nil {
			return err
		}

		remote, err := s.chapters.ListByStory(ctx, st.ID)
		if err != nil {
			return err
		}
		plan, err := Reconcile(st.ID, remote, d.Chapters)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, plan); err != nil {
			return err
		}

		chapters, err := s.chapters.ListByStory(ctx, st.ID)
		if err != nil {
			return err
		}
		st.Touch(chapters)
		if err := s.stories.Update(ctx, st); err != nil {
			return err
		}
		view = &story.View{Story: st, Chapters: chapters}

		logger.Info(ctx, "draft committed",
			"story_id", st.ID,
			"created", len(plan.Create),
			"updated", len(plan.Update),
			"deleted", len(plan.Delete),
			"forced", force,
		)
		return nil
	})
	if err != nil {
		err = story.SlugConflict(err)
		metrics.DraftCommitsTotal.WithLabelValues(commitStatus(err)).Inc()
		return nil, err
	}
	metrics.DraftCommitsTotal.WithLabelValues("ok").Inc()

	if err := s.drafts.Delete(ctx, userID, storyID); err != nil {
		logger.Warn(ctx, "failed to delete committed draft", "story_id", storyID, "error", err.Error())
	}
	return view, nil
}

// Discard 丢弃草稿
func (s *Service) Discard(ctx context.Context, userID, storyID string) error {
	if _, err := s.owner.LoadOwned(ctx, userID, storyID); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, userID, storyID); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, plan *Plan) error {
	for _, ch := range plan.Delete {
		if err := s.chapters.Delete(ctx, ch.ID); err != nil {
			return err
		}
	}
	for _, ch := range plan.Create {
		if err := s.chapters.Create(ctx, ch); err != nil {
			return err
		}
	}
	for _, ch := range plan.Update {
		if err := s.chapters.Update(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// fillSettings 省略的标题、类型和关键词取故事当前值，并校验类型
func fillSettings(ds entity.DraftSettings, st *entity.Story) (entity.DraftSettings, error) {
	ds.Title = strings.TrimSpace(ds.Title)
	if ds.Title == "" {
		ds.Title = st.Title
	}
	ds.Genre = strings.TrimSpace(ds.Genre)
	if ds.Genre == "" {
		ds.Genre = st.Genre
	}
	if !entity.IsKnownGenre(ds.Genre) {
		return ds, errors.InvalidParam("unknown genre " + ds.Genre)
	}
	if ds.Keywords == nil {
		ds.Keywords = slices.Clone(st.Keywords)
	}
	return ds, nil
}

func settingsInput(ds entity.DraftSettings) story.SettingsInput {
	return story.SettingsInput{
		Title:                 &ds.Title,
		Genre:                 &ds.Genre,
		Description:           &ds.Description,
		LongDescription:       &ds.LongDescription,
		Keywords:              ds.Keywords,
		KeywordsSet:           true,
		AudioNarrationEnabled: &ds.AudioNarration,
	}
}

func commitStatus(err error) string {
	if stderrors.Is(err, errors.ErrDraftConflict) || stderrors.Is(err, errors.ErrSlugConflict) {
		return "conflict"
	}
	return "error"
}
