package dto

import (
	"bookhatch-api/internal/application/draft"
	"bookhatch-api/internal/domain/entity"
)

// SaveDraftRequest 自动保存草稿
type SaveDraftRequest struct {
	BaseVersion int                   `json:"base_version" binding:"gte=0"`
	Settings    entity.DraftSettings  `json:"settings"`
	Chapters    []entity.DraftChapter `json:"chapters" binding:"max=500"`
}

// ToInput 转换为服务层参数
func (r *SaveDraftRequest) ToInput() draft.SaveInput {
	return draft.SaveInput{
		BaseVersion: r.BaseVersion,
		Settings:    r.Settings,
		Chapters:    r.Chapters,
	}
}

// CommitDraftRequest 提交草稿
type CommitDraftRequest struct {
	Force bool `json:"force" form:"force"`
}
