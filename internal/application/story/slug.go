package story

import (
	"context"
	"fmt"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
)

// maxSlugAttempts 同名故事的后缀上限
const maxSlugAttempts = 1000

// UniqueSlug 生成未被占用的 slug，冲突时依次追加 -2、-3
func UniqueSlug(ctx context.Context, stories repository.StoryRepository, title, excludeID string) (string, error) {
	base := entity.Slugify(title)
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := stories.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
