package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edu-network/internal/auth"
	"edu-network/internal/config"
	"edu-network/internal/models"
	"edu-network/internal/storage"
)

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	Register(ctx context.Context, username, nickname, email, password string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (token string, user *models.User, err error)
	// Logout revokes the token described by claims until it would have expired anyway.
	Logout(ctx context.Context, claims *auth.Claims) error
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo  storage.UserRepository
	authCfg   config.AuthConfig
	blacklist auth.TokenBlacklist
}

// NewAuthService 创建一个新的 AuthService 实例。blacklist 可以为 nil，此时登出不会吊销令牌。
func NewAuthService(userRepo storage.UserRepository, authCfg config.AuthConfig, blacklist auth.TokenBlacklist) AuthService {
	return &authService{
		userRepo:  userRepo,
		authCfg:   authCfg,
		blacklist: blacklist,
	}
}

// Register 处理用户注册逻辑。
func (s *authService) Register(ctx context.Context, username, nickname, email, password string) (*models.User, error) {
	// 检查用户名是否存在
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("检查用户名时出错: %w", err)
	}

	// 邮箱可选，填写时必须唯一
	if email != "" {
		_, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("检查邮箱时出错: %w", err)
		}
	}

	hashedPassword, err := auth.HashPassword(password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		return nil, ErrPasswordTooShort
	case errors.Is(err, auth.ErrPasswordTooLong):
		return nil, ErrPasswordTooLong
	case err != nil:
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	newUser := &models.User{
		Username:     username,
		Nickname:     nickname,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	zap.L().Info("user registered", zap.Uint("user", newUser.ID), zap.String("username", username))
	return newUser, nil
}

// Login 处理用户登录逻辑。用户不存在和密码错误返回同一个错误。
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 用户名未找到时尝试邮箱
		user, err = s.userRepo.GetByEmail(ctx, usernameOrEmail)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		} else if err != nil {
			return "", nil, fmt.Errorf("通过邮箱查找用户失败: %w", err)
		}
	} else if err != nil {
		return "", nil, fmt.Errorf("通过用户名查找用户失败: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.authCfg)
	if err != nil {
		return "", nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return kindError(ErrUnauthorized, "token cannot be revoked")
	}
	if s.blacklist == nil {
		zap.L().Warn("logout without token blacklist, token stays valid until expiry", zap.Uint("user", claims.UserID))
		return nil
	}
	if claims.Remaining(time.Now()) == 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("将 Token 加入黑名单失败: %w", err)
	}
	zap.L().Info("token revoked", zap.Uint("user", claims.UserID), zap.String("jti", claims.ID))
	return nil
}
