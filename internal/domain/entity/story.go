// Package entity 定义领域实体
package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoryStatus 故事状态，由章节发布情况推导
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusOngoing   StoryStatus = "ongoing"
	StoryStatusPublished StoryStatus = "published"
)

// PlaceholderCoverImage 新建故事的默认封面
const PlaceholderCoverImage = "https://placehold.co/300x450.png"

// Story 故事（读者侧称 Book）
type Story struct {
	ID                    string      `json:"id" gorm:"type:uuid;primaryKey"`
	AuthorID              string      `json:"author_id,omitempty" gorm:"type:varchar(36);index"`
	AuthorName            string      `json:"author" gorm:"type:varchar(255);index;not null"`
	Slug                  string      `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Title                 string      `json:"title" gorm:"type:varchar(255);not null"`
	Description           string      `json:"description" gorm:"type:text"`
	LongDescription       string      `json:"long_description,omitempty" gorm:"type:text"`
	Keywords              []string    `json:"keywords,omitempty" gorm:"type:jsonb;serializer:json"`
	Genre                 string      `json:"genre" gorm:"type:varchar(64);index"`
	CoverImage            string      `json:"cover_image" gorm:"type:text"`
	Status                StoryStatus `json:"status" gorm:"type:varchar(32);index;default:'draft'"`
	// AudioNarrationEnabled 作者是否允许读者生成章节朗读
	AudioNarrationEnabled bool        `json:"audio_narration_enabled" gorm:"not null;default:false"`
	Version               int         `json:"version" gorm:"default:1"`
	CreatedAt             time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Story) TableName() string {
	return "stories"
}

// NewStory 创建新故事，初始为草稿
func NewStory(authorID, authorName, title, description, genre string) *Story {
	now := time.Now()
	return &Story{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		AuthorName:  authorName,
		Slug:        Slugify(title),
		Title:       title,
		Description: description,
		Genre:       genre,
		CoverImage:  PlaceholderCoverImage,
		Status:      StoryStatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwnedBy 检查故事是否属于该用户
func (s *Story) IsOwnedBy(userID string) bool {
	return userID != "" && s.AuthorID == userID
}

// IsVisible 检查读者是否可以在书目中看到该故事
func (s *Story) IsVisible() bool {
	return s.Status == StoryStatusPublished || s.Status == StoryStatusOngoing
}

// Touch 章节或设置变更后刷新状态并增加版本号
func (s *Story) Touch(chapters []*Chapter) {
	s.Status = DeriveStatus(chapters)
	s.Version++
	s.UpdatedAt = time.Now()
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^\w-]+`)
)

// fallbackSlug 标题不含任何可用字符时使用
const fallbackSlug = "story"

// Slugify 由标题生成 URL 标识：小写、空白替换为 -、去掉 [A-Za-z0-9_-] 以外的字符
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	if s == "" {
		return fallbackSlug
	}
	return s
}
