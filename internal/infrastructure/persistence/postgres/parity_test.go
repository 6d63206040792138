package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/internal/infrastructure/persistence/memory"
)

// 内存存储与 SQL 存储对同一检索条件返回相同的结果与顺序
func TestStorySearch_MatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	sqlRepo := NewStoryRepository(newTestClient(t))
	memRepo := memory.NewStore().Stories()

	seed := []struct {
		title, author, genre string
		status               entity.StoryStatus
	}{
		{"Zebra", "Ada", "Fantasy", entity.StoryStatusPublished},
		{"the hobbit", "J.R.R. Tolkien", "Fantasy", entity.StoryStatusPublished},
		{"A Tale", "Bob", "Romance", entity.StoryStatusOngoing},
		{"Abc", "Ada", "Mystery", entity.StoryStatusPublished},
		{"abc", "Cy", "Mystery", entity.StoryStatusPublished},
		{"Hidden", "Ada", "Fantasy", entity.StoryStatusDraft},
		{"50% Off", "Dee", "Romance", entity.StoryStatusPublished},
	}
	for i, s := range seed {
		st := entity.NewStory("", s.author, s.title, "About "+s.title, s.genre)
		st.Slug = st.Slug + "-" + string(rune('a'+i))
		st.Status = s.status
		require.NoError(t, sqlRepo.Create(ctx, st))
		require.NoError(t, memRepo.Create(ctx, st))
	}

	visible := []entity.StoryStatus{entity.StoryStatusPublished, entity.StoryStatusOngoing}
	cases := map[string]*repository.StorySearch{
		"all":         nil,
		"visible":     {Statuses: visible},
		"query":       {Query: "ABC", Statuses: visible},
		"author":      {Query: "ada"},
		"genre":       {Genres: []string{"Fantasy", "Romance"}, Statuses: visible},
		"literal %":   {Query: "0%"},
		"genre exact": {Genres: []string{"fantasy"}},
		"no match":    {Query: "nothing here"},
	}

	ids := func(res *repository.PagedResult[*entity.Story]) []string {
		out := make([]string, 0, len(res.Items))
		for _, st := range res.Items {
			out = append(out, st.ID)
		}
		return out
	}

	for name, search := range cases {
		t.Run(name, func(t *testing.T) {
			for _, page := range []repository.Pagination{repository.NewPagination(1, 20), repository.NewPagination(2, 2)} {
				want, err := memRepo.Search(ctx, search, page)
				require.NoError(t, err)
				got, err := sqlRepo.Search(ctx, search, page)
				require.NoError(t, err)
				assert.Equal(t, want.Total, got.Total)
				assert.Equal(t, ids(want), ids(got))
			}
		})
	}

	wantByName, err := memRepo.ListByAuthorName(ctx, "Ada", visible)
	require.NoError(t, err)
	gotByName, err := sqlRepo.ListByAuthorName(ctx, "Ada", visible)
	require.NoError(t, err)
	require.Len(t, gotByName, len(wantByName))
	for i := range wantByName {
		assert.Equal(t, wantByName[i].ID, gotByName[i].ID)
	}
}
