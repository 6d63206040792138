// Package account 提供注册、登录与个人资料服务
package account

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/utils"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 8

// Session 登录结果
type Session struct {
	User   *entity.User
	Tokens *utils.TokenPair
}

// Service 账户服务
type Service struct {
	users      repository.UserRepository
	jwt        *utils.JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService 创建账户服务
func NewService(users repository.UserRepository, jwt *utils.JWTManager, cfg config.JWTConfig) *Service {
	s := &Service{
		users:      users,
		jwt:        jwt,
		accessTTL:  cfg.Expiration,
		refreshTTL: cfg.RefreshExpiration,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = 24 * time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	return s
}

// AccessTTL 访问令牌有效期
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL 刷新令牌有效期
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register 注册新用户并签发令牌
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := entity.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.InvalidParam("a valid email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, errors.InvalidParam(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrEmailAlreadyRegistered
	}

	user := entity.NewUser(email, strings.TrimSpace(in.Name))
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateKey) {
			return nil, errors.ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login 校验邮箱密码
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, errors.ErrUnauthorized.WithDetail("invalid email or password")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn(ctx, "failed to update last login time", "error", err.Error(), "user_id", user.ID)
	}
	return s.issue(user)
}

// Refresh 使用刷新令牌换取新的令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, errors.ErrTokenMissing
	}
	claims, err := s.jwt.ParseTokenOfType(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		if stderrors.Is(err, utils.ErrExpiredToken) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrTokenInvalid
	}
	return s.issue(user)
}

// Me 当前用户
func (s *Service) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}
	return user, nil
}

// ProfileInput 个人资料，nil 字段不修改
type ProfileInput struct {
	Name            *string
	Bio             *string
	AvatarURL       *string
	PreferredGenres []string
	GenresSet       bool
}

// UpdateMe 更新个人资料
func (s *Service) UpdateMe(ctx context.Context, userID string, in ProfileInput) (*entity.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.InvalidParam("name must not be empty")
		}
		user.Name = name
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.GenresSet {
		genres := make([]string, 0, len(in.PreferredGenres))
		for _, g := range in.PreferredGenres {
			if !entity.IsKnownGenre(g) {
				return nil, errors.InvalidParam("unknown genre " + g)
			}
			genres = append(genres, g)
		}
		user.PreferredGenres = genres
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// EnsureAdmin 创建或提升管理员账户，返回是否新建
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = entity.NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user != nil {
		if user.IsAdmin() {
			return false, nil
		}
		user.Role = entity.UserRoleAdmin
		return false, s.users.Update(ctx, user)
	}

	if len(password) < MinPasswordLength {
		return false, errors.InvalidParam(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	user = entity.NewUser(email, "admin")
	user.Role = entity.UserRoleAdmin
	if err := user.SetPassword(password); err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

func (s *Service) issue(user *entity.User) (*Session, error) {
	tokens, err := s.jwt.GenerateTokenPair(user.ID, user.Name, string(user.Role), s.accessTTL, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &Session{User: user, Tokens: tokens}, nil
}
