package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
)

// newTestClient 使用内存 SQLite 运行 GORM 仓储
func newTestClient(t *testing.T) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	client := NewClientWithDB(db)
	require.NoError(t, client.AutoMigrate(context.Background()))
	return client
}

func seedStory(t *testing.T, repo *StoryRepository, title, author, genre string, status entity.StoryStatus) *entity.Story {
	t.Helper()
	s := entity.NewStory("", author, title, "A tale about "+title, genre)
	s.Status = status
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestStoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStoryRepository(newTestClient(t))

	s := entity.NewStory(uuid.NewString(), "Ada", "Night Train", "summary", "Mystery")
	s.Keywords = []string{"rail", "night"}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetBySlug(ctx, "night-train")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, []string{"rail", "night"}, got.Keywords)

	exists, err := repo.SlugExists(ctx, "night-train", "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.SlugExists(ctx, "night-train", s.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	got.Title = "Day Train"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Day Train", again.Title)

	mine, err := repo.ListByAuthor(ctx, s.AuthorID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, repo.Delete(ctx, s.ID))
	missing, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoryRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewStoryRepository(newTestClient(t))

	seedStory(t, repo, "Dune", "Frank Herbert", "Science Fiction", entity.StoryStatusPublished)
	seedStory(t, repo, "The Hobbit", "J.R.R. Tolkien", "Fantasy", entity.StoryStatusPublished)
	seedStory(t, repo, "Work In Progress", "Ada", "Fantasy", entity.StoryStatusOngoing)
	seedStory(t, repo, "Hidden Draft", "Ada", "Fantasy", entity.StoryStatusDraft)
	seedStory(t, repo, "100% Pure", "Bob", "Romance", entity.StoryStatusPublished)

	visible := []entity.StoryStatus{entity.StoryStatusPublished, entity.StoryStatusOngoing}
	titles := func(search *repository.StorySearch) []string {
		res, err := repo.Search(ctx, search, repository.NewPagination(1, 20))
		require.NoError(t, err)
		out := make([]string, 0, len(res.Items))
		for _, s := range res.Items {
			out = append(out, s.Title)
		}
		return out
	}

	assert.Equal(t, []string{"100% Pure", "Dune", "The Hobbit", "Work In Progress"}, titles(&repository.StorySearch{Statuses: visible}))
	assert.Equal(t, []string{"Dune"}, titles(&repository.StorySearch{Query: "HERBERT", Statuses: visible}))
	assert.Equal(t, []string{"Dune"}, titles(&repository.StorySearch{Query: "science", Statuses: visible}))
	assert.Equal(t, []string{"The Hobbit", "Work In Progress"}, titles(&repository.StorySearch{Genres: []string{"Fantasy"}, Statuses: visible}))
	assert.Equal(t, []string{"100% Pure"}, titles(&repository.StorySearch{Query: "0%", Statuses: visible}))
	assert.Empty(t, titles(&repository.StorySearch{Query: "draft", Statuses: visible}))
	assert.Empty(t, titles(&repository.StorySearch{Genres: []string{"fantasy"}, Statuses: visible}))

	res, err := repo.Search(ctx, &repository.StorySearch{Statuses: visible}, repository.NewPagination(2, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Work In Progress", res.Items[0].Title)

	byName, err := repo.ListByAuthorName(ctx, "Ada", visible)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Work In Progress", byName[0].Title)
}

func TestChapterRepository_OrderingAndPublish(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	repo := NewChapterRepository(client)
	storyID := uuid.NewString()

	var chs []*entity.Chapter
	for i := 0; i < 3; i++ {
		ch := entity.NewChapter(storyID, fmt.Sprintf("Chapter %d", i+1), i)
		require.NoError(t, repo.Create(ctx, ch))
		chs = append(chs, ch)
	}

	reordered := entity.MoveChapter(chs, 2, 0)
	entity.Renumber(reordered)
	require.NoError(t, repo.UpdateOrders(ctx, reordered))

	listed, err := repo.ListByStory(ctx, storyID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Chapter 3", listed[0].Title)
	assert.Equal(t, "Chapter 1", listed[1].Title)

	listed[1].IsPublished = true
	require.NoError(t, repo.Update(ctx, listed[1]))
	published, err := repo.ListPublishedByStory(ctx, storyID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Chapter 1", published[0].Title)

	require.NoError(t, repo.SetPublishedByStory(ctx, storyID, true))
	published, err = repo.ListPublishedByStory(ctx, storyID)
	require.NoError(t, err)
	assert.Len(t, published, 3)

	require.NoError(t, repo.DeleteByStory(ctx, storyID))
	listed, err = repo.ListByStory(ctx, storyID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestTxManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	tx := NewTxManager(client)
	stories := NewStoryRepository(client)

	boom := errors.New("boom")
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		s := entity.NewStory("", "Ada", "Rolled Back", "", "Horror")
		if err := stories.Create(ctx, s); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := stories.GetBySlug(ctx, "rolled-back")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserAndJobRepositories(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	users := NewUserRepository(client)
	jobs := NewJobRepository(client)

	u := entity.NewUser("ada@example.com", "Ada")
	require.NoError(t, u.SetPassword("hunter22"))
	require.NoError(t, users.Create(ctx, u))

	exists, err := users.ExistsByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	byEmail, err := users.GetByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)
	require.NoError(t, users.UpdateLastLogin(ctx, u.ID))

	job := entity.NewGenerationJob(u.ID, uuid.NewString(), uuid.NewString(), entity.JobTypeChapterAudio, []byte(`{"voice":"Algenib"}`))
	require.NoError(t, jobs.Create(ctx, job))
	job.Start()
	require.NoError(t, jobs.Update(ctx, job))

	page, err := jobs.ListByUser(ctx, u.ID, &repository.JobFilter{Status: entity.JobStatusRunning}, repository.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, job.ID, page.Items[0].ID)
}
