package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/infrastructure/persistence/memory"
	apperrors "bookhatch-api/pkg/errors"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	user  *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	user := entity.NewUser("ada@example.com", "Ada")
	require.NoError(t, store.Users().Create(context.Background(), user))
	svc := NewService(store, store.Stories(), store.Chapters(), store.Users(), nil)
	return &fixture{svc: svc, store: store, user: user}
}

func (f *fixture) createStory(t *testing.T, title string) *entity.Story {
	t.Helper()
	st, err := f.svc.CreateStory(context.Background(), f.user.ID, CreateInput{
		Title: title, Summary: "A summary", Genre: "Fantasy",
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) addChapters(t *testing.T, storyID string, n int) []*entity.Chapter {
	t.Helper()
	out := make([]*entity.Chapter, 0, n)
	for i := 0; i < n; i++ {
		ch, err := f.svc.AddChapter(context.Background(), f.user.ID, storyID, "")
		require.NoError(t, err)
		out = append(out, ch)
	}
	return out
}

func orders(chapters []*entity.Chapter) []int {
	out := make([]int, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.Order)
	}
	return out
}

func ids(chapters []*entity.Chapter) []string {
	out := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.ID)
	}
	return out
}

func TestCreateStory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st := f.createStory(t, "My First Story!")
	assert.Equal(t, "my-first-story", st.Slug)
	assert.Equal(t, "Ada", st.AuthorName)
	assert.Equal(t, f.user.ID, st.AuthorID)
	assert.Equal(t, entity.StoryStatusDraft, st.Status)
	assert.Equal(t, entity.PlaceholderCoverImage, st.CoverImage)

	second := f.createStory(t, "My first story")
	assert.Equal(t, "my-first-story-2", second.Slug)
	third := f.createStory(t, "my FIRST story")
	assert.Equal(t, "my-first-story-3", third.Slug)

	_, err := f.svc.CreateStory(ctx, f.user.ID, CreateInput{Title: "x", Genre: "Fantasy"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	_, err = f.svc.CreateStory(ctx, f.user.ID, CreateInput{Title: "x", Summary: "y", Genre: "Cooking"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

func TestGetStory_Forbidden(t *testing.T) {
	f := newFixture(t)
	st := f.createStory(t, "Secret")

	_, err := f.svc.GetStory(context.Background(), "someone-else", st.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.GetStory(context.Background(), f.user.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrStoryNotFound)
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createStory(t, "Taken Title")
	st := f.createStory(t, "Original")

	title := "Taken Title"
	enabled := true
	updated, err := f.svc.UpdateSettings(ctx, f.user.ID, st.ID, SettingsInput{
		Title:                 &title,
		Keywords:              []string{" magic ", "magic", "", "dragons"},
		KeywordsSet:           true,
		AudioNarrationEnabled: &enabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "taken-title-2", updated.Slug)
	assert.Equal(t, []string{"magic", "dragons"}, updated.Keywords)
	assert.True(t, updated.AudioNarrationEnabled)
	assert.Equal(t, "A summary", updated.Description)
	assert.Equal(t, st.Version+1, updated.Version)

	// 标题不变时 slug 保持
	again, err := f.svc.UpdateSettings(ctx, f.user.ID, st.ID, SettingsInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "taken-title-2", again.Slug)

	bad := "Cooking"
	_, err = f.svc.UpdateSettings(ctx, f.user.ID, st.ID, SettingsInput{Genre: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

// racingStories 模拟 slug 检查与写入之间被其他请求抢占
type racingStories struct {
	*memory.StoryRepository
}

func (racingStories) SlugExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestLostSlugRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createStory(t, "Taken")
	other := f.createStory(t, "Other")
	racing := NewService(f.store, racingStories{f.store.Stories()}, f.store.Chapters(), f.store.Users(), nil)

	title := "Taken"
	_, err := racing.UpdateSettings(ctx, f.user.ID, other.ID, SettingsInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)

	_, err = racing.CreateStory(ctx, f.user.ID, CreateInput{Title: "Taken", Summary: "s", Genre: "Fantasy"})
	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)

	st, err := f.store.Stories().GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Other", st.Title)
	assert.Equal(t, "other", st.Slug)
}

func TestChapterLifecycle_StatusDerivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStory(t, "Chapters")
	chs := f.addChapters(t, st.ID, 2)

	assert.Equal(t, entity.DefaultChapterTitle, chs[0].Title)
	assert.Equal(t, []int{0, 1}, orders(chs))

	_, err := f.svc.TogglePublish(ctx, f.user.ID, chs[0].ID)
	require.NoError(t, err)
	view, err := f.svc.GetStory(ctx, f.user.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StoryStatusOngoing, view.Status)

	_, err = f.svc.TogglePublish(ctx, f.user.ID, chs[1].ID)
	require.NoError(t, err)
	view, err = f.svc.GetStory(ctx, f.user.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StoryStatusPublished, view.Status)

	reading, err := f.svc.ReadStory(ctx, view.Slug)
	require.NoError(t, err)
	assert.Len(t, reading.Chapters, 2)

	_, err = f.svc.ReadStory(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrStoryNotFound)
}

func TestUpdateChapter_Sanitizes(t *testing.T) {
	f := newFixture(t)
	st := f.createStory(t, "Sanitize")
	ch := f.addChapters(t, st.ID, 1)[0]

	content := `<p onclick="x()">Hello brave world</p><script>alert(1)</script>`
	updated, err := f.svc.UpdateChapter(context.Background(), f.user.ID, ch.ID, ChapterInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello brave world</p>", updated.Content)
	assert.Equal(t, 3, updated.WordCount)
}

func TestDeleteChapter_Renumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStory(t, "Renumber")
	chs := f.addChapters(t, st.ID, 4)

	require.NoError(t, f.svc.DeleteChapter(ctx, f.user.ID, chs[1].ID))

	view, err := f.svc.GetStory(ctx, f.user.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, orders(view.Chapters))
	assert.Equal(t, []string{chs[0].ID, chs[2].ID, chs[3].ID}, ids(view.Chapters))
}

func TestReorderChapters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStory(t, "Reorder")
	chs := f.addChapters(t, st.ID, 3)

	src, dst := 0, 2
	ordered, err := f.svc.ReorderChapters(ctx, f.user.ID, st.ID, ReorderInput{SourceIndex: &src, DestinationIndex: &dst})
	require.NoError(t, err)
	assert.Equal(t, []string{chs[1].ID, chs[2].ID, chs[0].ID}, ids(ordered))
	assert.Equal(t, []int{0, 1, 2}, orders(ordered))

	// 缺少目标位置视为无操作
	noop, err := f.svc.ReorderChapters(ctx, f.user.ID, st.ID, ReorderInput{SourceIndex: &src})
	require.NoError(t, err)
	assert.Equal(t, ids(ordered), ids(noop))

	outOfRange := 5
	_, err = f.svc.ReorderChapters(ctx, f.user.ID, st.ID, ReorderInput{SourceIndex: &outOfRange, DestinationIndex: &dst})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	full, err := f.svc.ReorderChapters(ctx, f.user.ID, st.ID, ReorderInput{ChapterIDs: []string{chs[2].ID, chs[0].ID, chs[1].ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{chs[2].ID, chs[0].ID, chs[1].ID}, ids(full))

	_, err = f.svc.ReorderChapters(ctx, f.user.ID, st.ID, ReorderInput{ChapterIDs: []string{chs[2].ID, chs[2].ID, chs[1].ID}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

func TestPublishAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStory(t, "Publish")

	_, err := f.svc.PublishAll(ctx, f.user.ID, st.ID)
	assert.ErrorIs(t, err, apperrors.ErrStoryHasNoChapters)

	f.addChapters(t, st.ID, 2)
	view, err := f.svc.PublishAll(ctx, f.user.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StoryStatusPublished, view.Status)

	stored, err := f.store.Chapters().ListPublishedByStory(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestDeleteStory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStory(t, "Doomed")
	f.addChapters(t, st.ID, 2)

	assert.ErrorIs(t, f.svc.DeleteStory(ctx, "intruder", st.ID), apperrors.ErrForbidden)
	require.NoError(t, f.svc.DeleteStory(ctx, f.user.ID, st.ID))

	chapters, err := f.store.Chapters().ListByStory(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	mine, err := f.svc.ListMine(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
