package draft

import (
	"strings"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/richtext"
)

// Plan 草稿提交时对章节的变更计划
type Plan struct {
	Create []*entity.Chapter
	Update []*entity.Chapter
	Delete []*entity.Chapter
}

// Empty 计划是否没有任何变更
func (p *Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Reconcile 对比文档存储中的章节与草稿章节，生成变更计划。
// 草稿中的 ID 不属于该故事时按新章节处理；重复 ID 返回参数错误。
func Reconcile(storyID string, remote []*entity.Chapter, chapters []entity.DraftChapter) (*Plan, error) {
	byID := make(map[string]*entity.Chapter, len(remote))
	for _, ch := range remote {
		byID[ch.ID] = ch
	}

	plan := &Plan{}
	seen := make(map[string]bool, len(chapters))
	for i, dc := range chapters {
		if dc.ID != "" {
			if seen[dc.ID] {
				return nil, errors.InvalidParam("duplicate chapter id " + dc.ID)
			}
			seen[dc.ID] = true
		}

		title := strings.TrimSpace(dc.Title)
		if title == "" {
			title = entity.DefaultChapterTitle
		}

		existing, ok := byID[dc.ID]
		if !ok {
			ch := entity.NewChapter(storyID, title, i)
			ch.SetContent(dc.Content, richtext.WordCount(dc.Content))
			ch.IsPublished = dc.IsPublished
			plan.Create = append(plan.Create, ch)
			continue
		}

		if existing.Title == title && existing.Content == dc.Content &&
			existing.IsPublished == dc.IsPublished && existing.Order == i {
			continue
		}
		updated := *existing
		updated.Title = title
		updated.IsPublished = dc.IsPublished
		updated.Order = i
		if updated.Content != dc.Content {
			updated.SetContent(dc.Content, richtext.WordCount(dc.Content))
		}
		plan.Update = append(plan.Update, &updated)
	}

	for _, ch := range remote {
		if !seen[ch.ID] {
			plan.Delete = append(plan.Delete, ch)
		}
	}
	return plan, nil
}
