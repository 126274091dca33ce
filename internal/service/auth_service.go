package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"noticias/internal/auth"
	"noticias/internal/model"
	"noticias/internal/repository"
	"noticias/pkg/logger"
)

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService 登录服务
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *logger.Logger
}

// NewAuthService 创建登录服务实例
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     auth.Credential
)

// 用户不存在时也执行一次 bcrypt 比较，避免通过响应耗时枚举用户名
func dummyCredential() auth.Credential {
	dummyHashOnce.Do(func() {
		hash, err := auth.HashPassword("not-a-real-password")
		if err != nil {
			dummyHash = auth.Plaintext("")
			return
		}
		dummyHash = auth.ParseCredential(hash)
	})
	return dummyHash
}

// Login 校验用户名密码并签发令牌
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, errMissingCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		dummyCredential().Verify(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	credential := auth.ParseCredential(user.Credential)
	if _, legacy := credential.(auth.Plaintext); legacy {
		s.logger.Warn("用户密码以明文保存，请执行 migrate -rehash", "user_id", user.ID)
	}
	if !credential.Verify(password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
