package dto

import (
	"time"

	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/domain/entity"
)

// BookResponse 书目卡片
type BookResponse struct {
	ID          string             `json:"id"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	Author      string             `json:"author"`
	Description string             `json:"description"`
	Genre       string             `json:"genre"`
	CoverImage  string             `json:"cover_image"`
	Status      entity.StoryStatus `json:"status"`
}

// StoryResponse 故事详情
type StoryResponse struct {
	BookResponse
	AuthorID              string             `json:"author_id,omitempty"`
	LongDescription       string             `json:"long_description,omitempty"`
	Keywords              []string           `json:"keywords"`
	AudioNarrationEnabled bool               `json:"audio_narration_enabled"`
	Version               int                `json:"version"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	Chapters              []*ChapterResponse `json:"chapters,omitempty"`
}

// CreateStoryRequest 新建故事
type CreateStoryRequest struct {
	Title   string `json:"title" binding:"max=255"`
	Summary string `json:"summary" binding:"max=5000"`
	Genre   string `json:"genre" binding:"max=64"`
}

// UpdateSettingsRequest 故事设置，缺省字段不修改
type UpdateSettingsRequest struct {
	Title                 *string   `json:"title" binding:"omitempty,max=255"`
	Genre                 *string   `json:"genre" binding:"omitempty,max=64"`
	Description           *string   `json:"description" binding:"omitempty,max=5000"`
	LongDescription       *string   `json:"long_description" binding:"omitempty,max=20000"`
	Keywords              *[]string `json:"keywords"`
	AudioNarrationEnabled *bool     `json:"audio_narration_enabled"`
}

// ToInput 转换为服务层参数
func (r *UpdateSettingsRequest) ToInput() story.SettingsInput {
	in := story.SettingsInput{
		Title:                 r.Title,
		Genre:                 r.Genre,
		Description:           r.Description,
		LongDescription:       r.LongDescription,
		AudioNarrationEnabled: r.AudioNarrationEnabled,
	}
	if r.Keywords != nil {
		in.Keywords = *r.Keywords
		in.KeywordsSet = true
	}
	return in
}

// ToBookResponse 实体转换为书目卡片
func ToBookResponse(s *entity.Story) *BookResponse {
	if s == nil {
		return nil
	}
	return &BookResponse{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Author:      s.AuthorName,
		Description: s.Description,
		Genre:       s.Genre,
		CoverImage:  s.CoverImage,
		Status:      s.Status,
	}
}

// ToBookList 实体列表转换为书目卡片列表
func ToBookList(stories []*entity.Story) []*BookResponse {
	out := make([]*BookResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, ToBookResponse(s))
	}
	return out
}

// ToStoryResponse 实体转换为详情，chapters 为 nil 时不输出章节
func ToStoryResponse(s *entity.Story, chapters []*entity.Chapter) *StoryResponse {
	if s == nil {
		return nil
	}
	keywords := s.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	resp := &StoryResponse{
		BookResponse:          *ToBookResponse(s),
		AuthorID:              s.AuthorID,
		LongDescription:       s.LongDescription,
		Keywords:              keywords,
		AudioNarrationEnabled: s.AudioNarrationEnabled,
		Version:               s.Version,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if chapters != nil {
		resp.Chapters = ToChapterList(chapters)
	}
	return resp
}

// ToStoryView 转换故事及章节视图
func ToStoryView(v *story.View) *StoryResponse {
	if v == nil {
		return nil
	}
	chapters := v.Chapters
	if chapters == nil {
		chapters = []*entity.Chapter{}
	}
	return ToStoryResponse(v.Story, chapters)
}
