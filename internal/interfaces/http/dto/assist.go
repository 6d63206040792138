package dto

import "bookhatch-api/internal/application/assist"

// RecommendRequest 推荐请求，genres 为空时使用偏好题材
type RecommendRequest struct {
	Genres []string `json:"genres" binding:"max=20"`
}

// ContinueRequest 续写请求
type ContinueRequest struct {
	Text string `json:"text" binding:"required"`
}

// ContinueResponse 续写结果
type ContinueResponse struct {
	Paragraph string `json:"paragraph"`
}

// CoverRequest 封面生成请求
type CoverRequest struct {
	Title   string `json:"title" binding:"max=255"`
	Genre   string `json:"genre" binding:"max=64"`
	Summary string `json:"summary" binding:"max=5000"`
	// Apply 仅故事封面使用，为 true 时写回故事
	Apply bool `json:"apply"`
}

// ToInput 转换为服务层参数
func (r *CoverRequest) ToInput() assist.CoverRequest {
	return assist.CoverRequest{Title: r.Title, Genre: r.Genre, Summary: r.Summary}
}

// StoryCoverResponse 故事封面结果
type StoryCoverResponse struct {
	*assist.Cover
	Story *StoryResponse `json:"story,omitempty"`
}
