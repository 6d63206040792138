// Package entity 定义领域实体
package entity

import "time"

// DraftSettings 草稿中的故事设置
type DraftSettings struct {
	Title           string   `json:"title"`
	Genre           string   `json:"genre"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description"`
	Keywords        []string `json:"keywords"`
	AudioNarration  bool     `json:"audio_narration_enabled"`
}

// DraftChapter 草稿中的章节，顺序即列表位置；ID 为空表示新章节
type DraftChapter struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}

// Draft 用户对某个故事尚未提交的编辑快照
type Draft struct {
	StoryID     string         `json:"story_id"`
	UserID      string         `json:"user_id"`
	BaseVersion int            `json:"base_version"`
	Settings    DraftSettings  `json:"settings"`
	Chapters    []DraftChapter `json:"chapters"`
	SavedAt     time.Time      `json:"saved_at"`
}

// SnapshotDraft 由文档存储中的当前状态构建草稿
func SnapshotDraft(userID string, story *Story, chapters []*Chapter) *Draft {
	d := &Draft{
		StoryID:     story.ID,
		UserID:      userID,
		BaseVersion: story.Version,
		Settings: DraftSettings{
			Title:           story.Title,
			Genre:           story.Genre,
			Description:     story.Description,
			LongDescription: story.LongDescription,
			Keywords:        append([]string(nil), story.Keywords...),
			AudioNarration:  story.AudioNarrationEnabled,
		},
		Chapters: make([]DraftChapter, 0, len(chapters)),
		SavedAt:  story.UpdatedAt,
	}
	for _, ch := range chapters {
		d.Chapters = append(d.Chapters, DraftChapter{
			ID:          ch.ID,
			Title:       ch.Title,
			Content:     ch.Content,
			IsPublished: ch.IsPublished,
		})
	}
	return d
}
