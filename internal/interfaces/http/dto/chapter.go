package dto

import (
	"time"

	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/domain/entity"
)

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID          string    `json:"id"`
	StoryID     string    `json:"story_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsPublished bool      `json:"is_published"`
	Order       int       `json:"order"`
	WordCount   int       `json:"word_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddChapterRequest 新增章节，标题可省略
type AddChapterRequest struct {
	Title string `json:"title" binding:"max=255"`
}

// UpdateChapterRequest 更新章节，缺省字段不修改
type UpdateChapterRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content"`
}

// ReorderChaptersRequest 章节排序：拖拽或完整 ID 列表二选一
type ReorderChaptersRequest struct {
	SourceIndex      *int     `json:"source_index"`
	DestinationIndex *int     `json:"destination_index"`
	ChapterIDs       []string `json:"chapter_ids"`
}

// ToInput 转换为服务层参数
func (r *UpdateChapterRequest) ToInput() story.ChapterInput {
	return story.ChapterInput{Title: r.Title, Content: r.Content}
}

// ToInput 转换为服务层参数
func (r *ReorderChaptersRequest) ToInput() story.ReorderInput {
	return story.ReorderInput{
		SourceIndex:      r.SourceIndex,
		DestinationIndex: r.DestinationIndex,
		ChapterIDs:       r.ChapterIDs,
	}
}

// ToChapterResponse 实体转换为响应
func ToChapterResponse(ch *entity.Chapter) *ChapterResponse {
	if ch == nil {
		return nil
	}
	return &ChapterResponse{
		ID:          ch.ID,
		StoryID:     ch.StoryID,
		Title:       ch.Title,
		Content:     ch.Content,
		IsPublished: ch.IsPublished,
		Order:       ch.Order,
		WordCount:   ch.WordCount,
		UpdatedAt:   ch.UpdatedAt,
	}
}

// ToChapterList 实体列表转换为响应
func ToChapterList(chapters []*entity.Chapter) []*ChapterResponse {
	out := make([]*ChapterResponse, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ToChapterResponse(ch))
	}
	return out
}
