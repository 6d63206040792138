// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChapterTitle 新增章节的默认标题
const DefaultChapterTitle = "New Chapter"

// Chapter 章节实体
type Chapter struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	StoryID     string    `json:"story_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"type:varchar(255)"`
	Content     string    `json:"content" gorm:"type:text"`
	IsPublished bool      `json:"is_published" gorm:"not null;default:false"`
	Order       int       `json:"order" gorm:"column:sort_order;not null"`
	WordCount   int       `json:"word_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节，内容为空段落且未发布
func NewChapter(storyID, title string, order int) *Chapter {
	if title == "" {
		title = DefaultChapterTitle
	}
	now := time.Now()
	return &Chapter{
		ID:        uuid.NewString(),
		StoryID:   storyID,
		Title:     title,
		Content:   "<p></p>",
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetContent 设置已清洗的章节内容及词数
func (c *Chapter) SetContent(html string, wordCount int) {
	c.Content = html
	c.WordCount = wordCount
	c.UpdatedAt = time.Now()
}

// TogglePublish 切换发布状态
func (c *Chapter) TogglePublish() {
	c.IsPublished = !c.IsPublished
	c.UpdatedAt = time.Now()
}

// DeriveStatus 根据章节推导故事状态：全部发布为 published，部分发布为 ongoing，否则为 draft
func DeriveStatus(chapters []*Chapter) StoryStatus {
	if len(chapters) == 0 {
		return StoryStatusDraft
	}
	published := 0
	for _, ch := range chapters {
		if ch.IsPublished {
			published++
		}
	}
	switch published {
	case 0:
		return StoryStatusDraft
	case len(chapters):
		return StoryStatusPublished
	default:
		return StoryStatusOngoing
	}
}

// PublishedChapters 按顺序返回已发布章节，输入需已排序
func PublishedChapters(chapters []*Chapter) []*Chapter {
	out := make([]*Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if ch.IsPublished {
			out = append(out, ch)
		}
	}
	return out
}

// Renumber 将章节顺序重置为 0..n-1，返回顺序发生变化的章节
func Renumber(chapters []*Chapter) []*Chapter {
	var changed []*Chapter
	for i, ch := range chapters {
		if ch.Order != i {
			ch.Order = i
			changed = append(changed, ch)
		}
	}
	return changed
}

// MoveChapter 将 from 位置的章节移动到 to 位置（拖拽排序），返回新切片
func MoveChapter(chapters []*Chapter, from, to int) []*Chapter {
	out := make([]*Chapter, len(chapters))
	copy(out, chapters)
	if from < 0 || from >= len(out) {
		return out
	}
	if to < 0 {
		to = 0
	}
	if to >= len(out) {
		to = len(out) - 1
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]*Chapter{moved}, out[to:]...)...)
	return out
}
