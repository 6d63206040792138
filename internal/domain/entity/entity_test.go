package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chapters(published ...bool) []*Chapter {
	out := make([]*Chapter, len(published))
	for i, p := range published {
		out[i] = &Chapter{ID: string(rune('a' + i)), Order: i, IsPublished: p}
	}
	return out
}

func ids(chs []*Chapter) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = ch.ID
	}
	return out
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"The Hobbit", "the-hobbit"},
		{"  Dune  ", "dune"},
		{"And Then There Were None", "and-then-there-were-none"},
		{"Hello,   World!", "hello-world"},
		{"snake_case stays", "snake_case-stays"},
		{"1984", "1984"},
		{"Café Noir", "caf-noir"},
		{"!!!", "story"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StoryStatusDraft, DeriveStatus(nil))
	assert.Equal(t, StoryStatusDraft, DeriveStatus(chapters(false, false)))
	assert.Equal(t, StoryStatusOngoing, DeriveStatus(chapters(true, false)))
	assert.Equal(t, StoryStatusPublished, DeriveStatus(chapters(true, true)))
}

func TestStory_Touch(t *testing.T) {
	s := NewStory("u1", "Ada", "My Tale", "summary", "Fantasy")
	assert.Equal(t, "my-tale", s.Slug)
	assert.Equal(t, PlaceholderCoverImage, s.CoverImage)
	assert.False(t, s.IsVisible())

	s.Touch(chapters(true))

	assert.Equal(t, 2, s.Version)
	assert.Equal(t, StoryStatusPublished, s.Status)
	assert.True(t, s.IsVisible())
	assert.True(t, s.IsOwnedBy("u1"))
	assert.False(t, s.IsOwnedBy(""))
}

func TestNewChapter_Defaults(t *testing.T) {
	ch := NewChapter("s1", "", 3)

	assert.Equal(t, DefaultChapterTitle, ch.Title)
	assert.Equal(t, "<p></p>", ch.Content)
	assert.False(t, ch.IsPublished)
	assert.Equal(t, 3, ch.Order)
	assert.NotEmpty(t, ch.ID)
}

func TestMoveChapter(t *testing.T) {
	base := chapters(false, false, false, false) // a b c d

	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(MoveChapter(base, 0, 2)))
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(MoveChapter(base, 3, 0)))
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(MoveChapter(base, 1, 10)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(MoveChapter(base, 9, 0)))
	// 原切片不被修改
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(base))
}

func TestRenumber(t *testing.T) {
	chs := MoveChapter(chapters(false, false, false), 2, 0) // c a b

	changed := Renumber(chs)

	assert.Len(t, changed, 3)
	for i, ch := range chs {
		assert.Equal(t, i, ch.Order)
	}
	assert.Empty(t, Renumber(chs))
}

func TestPublishedChapters(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, ids(PublishedChapters(chapters(true, false, true))))
}

func TestGenerationJob_Lifecycle(t *testing.T) {
	j := NewGenerationJob("u1", "s1", "c1", JobTypeChapterAudio, nil)
	assert.Equal(t, JobStatusPending, j.Status)
	assert.False(t, j.IsFinished())

	j.Start()
	assert.Equal(t, JobStatusRunning, j.Status)

	j.Complete([]byte(`{"audio_data_uri":"data:audio/wav;base64,"}`))
	assert.True(t, j.IsFinished())
	assert.Equal(t, 100, j.Progress)
}

func TestUser_Password(t *testing.T) {
	u := NewUser("  Ada@Example.com ", "")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ada", u.Name)

	assert.NoError(t, u.SetPassword("hunter22"))
	assert.True(t, u.CheckPassword("hunter22"))
	assert.False(t, u.CheckPassword("wrong"))
}
