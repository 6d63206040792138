package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/infrastructure/persistence/memory"
	apperrors "bookhatch-api/pkg/errors"
)

func newSeededService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, store.Stories(), store.Chapters())
	n, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, n)
	return svc, store
}

func titles(stories []*entity.Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.Title)
	}
	return out
}

func TestSeedBooks(t *testing.T) {
	books, err := SeedBooks()
	require.NoError(t, err)
	require.Len(t, books, 10)

	for _, b := range books {
		assert.Equal(t, entity.StoryStatusPublished, b.Story.Status, b.Story.Title)
		assert.True(t, entity.IsKnownGenre(b.Story.Genre), b.Story.Genre)
		assert.Equal(t, b.Story.ID, b.Chapter.StoryID)
		assert.True(t, b.Chapter.IsPublished)
		assert.Positive(t, b.Chapter.WordCount)
	}

	again, err := SeedBooks()
	require.NoError(t, err)
	assert.Equal(t, books[0].Story.ID, again[0].Story.ID)
}

func TestSeed_Idempotent(t *testing.T) {
	svc, _ := newSeededService(t)

	n, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearch(t *testing.T) {
	svc, store := newSeededService(t)
	ctx := context.Background()

	draft := entity.NewStory("u-1", "Ada", "Hidden Dune Draft", "", "Science Fiction")
	require.NoError(t, store.Stories().Create(ctx, draft))

	t.Run("empty query returns all visible books sorted by title", func(t *testing.T) {
		res, err := svc.Search(ctx, Criteria{Query: "   "})
		require.NoError(t, err)
		assert.EqualValues(t, 10, res.Total)
		got := titles(res.Items)
		assert.IsNonDecreasing(t, got)
		assert.NotContains(t, got, "Hidden Dune Draft")
	})

	t.Run("query matches author case-insensitively", func(t *testing.T) {
		res, err := svc.Search(ctx, Criteria{Query: "TOLKIEN"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "The Hobbit", res.Items[0].Title)
	})

	t.Run("genre filter is exact", func(t *testing.T) {
		res, err := svc.Search(ctx, Criteria{Genres: []string{"Science Fiction", " "}})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Items)
		for _, s := range res.Items {
			assert.Equal(t, "Science Fiction", s.Genre)
		}

		res, err = svc.Search(ctx, Criteria{Genres: []string{"science fiction"}})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
	})

	t.Run("ongoing filter", func(t *testing.T) {
		res, err := svc.Search(ctx, Criteria{Status: StatusOngoing})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.Search(ctx, Criteria{Page: 2, PageSize: 4})
		require.NoError(t, err)
		assert.Len(t, res.Items, 4)
		assert.Equal(t, 3, res.TotalPages)
	})
}

func TestParseStatusFilter(t *testing.T) {
	f, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, f)

	f, err = ParseStatusFilter(" Ongoing ")
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, f)

	_, err = ParseStatusFilter("draft")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

func TestBooksByAuthor(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	books, err := svc.BooksByAuthor(ctx, "George Orwell")
	require.NoError(t, err)
	assert.Equal(t, []string{"1984"}, titles(books))

	_, err = svc.BooksByAuthor(ctx, "Nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenres(t *testing.T) {
	svc := NewService(nil, nil, nil)
	g := svc.Genres()
	assert.Len(t, g, 9)
	g[0] = "changed"
	assert.Equal(t, "Science Fiction", svc.Genres()[0])
}
