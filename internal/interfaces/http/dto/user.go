package dto

import (
	"time"

	"bookhatch-api/internal/application/account"
	"bookhatch-api/internal/domain/entity"
)

// UserResponse 个人资料
type UserResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Bio             string          `json:"bio,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	PreferredGenres []string        `json:"preferred_genres"`
	Role            entity.UserRole `json:"role"`
	LastLoginAt     *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UpdateProfileRequest 更新资料请求，缺省字段不修改
type UpdateProfileRequest struct {
	Name            *string   `json:"name" binding:"omitempty,max=128"`
	Bio             *string   `json:"bio" binding:"omitempty,max=2000"`
	AvatarURL       *string   `json:"avatar_url" binding:"omitempty,max=2048"`
	PreferredGenres *[]string `json:"preferred_genres"`
}

// ToInput 转换为服务层参数
func (r *UpdateProfileRequest) ToInput() account.ProfileInput {
	in := account.ProfileInput{
		Name:      r.Name,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
	}
	if r.PreferredGenres != nil {
		in.PreferredGenres = *r.PreferredGenres
		in.GenresSet = true
	}
	return in
}

// ToUserResponse 实体转换为响应
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	genres := u.PreferredGenres
	if genres == nil {
		genres = []string{}
	}
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Bio:             u.Bio,
		AvatarURL:       u.AvatarURL,
		PreferredGenres: genres,
		Role:            u.Role,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}
