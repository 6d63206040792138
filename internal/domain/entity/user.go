// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User 用户实体，同时承载作者公开资料
type User struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash    string     `json:"-" gorm:"type:varchar(255);not null"` // 不在 JSON 中暴露
	Name            string     `json:"name" gorm:"type:varchar(255)"`
	Bio             string     `json:"bio,omitempty" gorm:"type:text"`
	AvatarURL       string     `json:"avatar_url,omitempty" gorm:"type:text"`
	PreferredGenres []string   `json:"preferred_genres,omitempty" gorm:"type:jsonb;serializer:json"`
	Role            UserRole   `json:"role" gorm:"type:varchar(32);default:'member'"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// NewUser 创建新用户
func NewUser(email, name string) *User {
	now := time.Now()
	email = NormalizeEmail(email)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      UserRoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail 邮箱统一为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin 检查用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// SetPassword 设置并散列密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
