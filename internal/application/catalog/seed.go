package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/richtext"
)

//go:embed books.json
var seedBooksJSON []byte

// seedNamespace 派生种子数据的稳定 ID
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bookhatch.app/catalog/seed"))

type seedBook struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	LongDescription string `json:"long_description"`
	CoverImage      string `json:"cover_image"`
	Genre           string `json:"genre"`
}

// SeedBook 内置书目及其唯一的已发布章节
type SeedBook struct {
	Story   *entity.Story
	Chapter *entity.Chapter
}

// SeedBooks 解析内置书目
func SeedBooks() ([]SeedBook, error) {
	sanitizer := richtext.NewSanitizer()
	var raw []seedBook
	if err := json.Unmarshal(seedBooksJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed books: %w", err)
	}

	out := make([]SeedBook, 0, len(raw))
	for _, b := range raw {
		story := entity.NewStory("", b.Author, b.Title, b.Description, b.Genre)
		story.ID = uuid.NewSHA1(seedNamespace, []byte(story.Slug)).String()
		story.LongDescription = b.LongDescription
		story.CoverImage = b.CoverImage

		ch := entity.NewChapter(story.ID, "Chapter 1", 0)
		ch.ID = uuid.NewSHA1(seedNamespace, []byte(story.Slug+"/chapter-1")).String()
		html := sanitizer.Sanitize("<p>" + b.LongDescription + "</p>")
		ch.SetContent(html, richtext.WordCount(html))
		ch.IsPublished = true

		story.Status = entity.DeriveStatus([]*entity.Chapter{ch})
		out = append(out, SeedBook{Story: story, Chapter: ch})
	}
	return out, nil
}

// Seed 写入内置书目，已存在的 slug 跳过，返回新写入数量
func (s *Service) Seed(ctx context.Context) (int, error) {
	books, err := SeedBooks()
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, b := range books {
			existing, err := s.stories.GetBySlug(ctx, b.Story.Slug)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := s.stories.Create(ctx, b.Story); err != nil {
				return err
			}
			if err := s.chapters.Create(ctx, b.Chapter); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}

	logger.Info(ctx, "catalog seeded", "created", created, "total", len(books))
	return created, nil
}
