package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"edu-network/internal/models"
	"edu-network/internal/storage"
)

const searchResultLimit = 50

// ProfilePatch 是用户可以修改的个人资料字段，nil 表示不修改。
type ProfilePatch struct {
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,max=255"`
	Headline  *string `json:"headline,omitempty" validate:"omitempty,max=255"`
	Bio       *string `json:"bio,omitempty"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// UserService 定义了用户相关服务的接口。
type UserService interface {
	GetMyProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateMyProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error)
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]*models.UserBasicInfo, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo storage.UserRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetMyProfile 返回用户自己的完整资料（不受隐私设置限制）。
func (s *userService) GetMyProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户 %d 失败: %w", userID, err)
	}
	return user, nil
}

// UpdateMyProfile 更新用户的个人资料。
func (s *userService) UpdateMyProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error) {
	user, err := s.GetMyProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	set := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			updated = true
		}
	}
	set(&user.Nickname, patch.Nickname)
	set(&user.AvatarURL, patch.AvatarURL)
	set(&user.Headline, patch.Headline)
	set(&user.Bio, patch.Bio)
	set(&user.Phone, patch.Phone)

	if !updated {
		return user, nil
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户 %d 资料失败: %w", userID, err)
	}
	return user, nil
}

// SearchUsers 按用户名或昵称搜索，结果不包含当前用户。
func (s *userService) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]*models.UserBasicInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.UserBasicInfo{}, nil
	}
	users, err := s.userRepo.SearchUsers(ctx, query, currentUserID, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}
	return users, nil
}
