package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"noticias/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL 令牌有效期
const DefaultTokenTTL = 8 * time.Hour

// 令牌校验失败原因，仅用于日志；对外统一返回 invalid_token
const (
	ReasonExpired      = "expired"
	ReasonMalformed    = "malformed"
	ReasonBadSignature = "bad_signature"
)

// ErrForbidden 已认证但不是管理员
var ErrForbidden = errors.New("forbidden")

// TokenError 令牌无效
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid token (%s): %v", e.Reason, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Claims 令牌载荷
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenManager 使用 HS256 签发和校验无状态令牌
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenManager 创建令牌管理器，ttl <= 0 时使用默认8小时
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return newTokenManager(secret, ttl, time.Now)
}

func newTokenManager(secret []byte, ttl time.Duration, now func() time.Time) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: secret,
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(now),
		),
	}
}

// Issue 为用户签发令牌，返回令牌及其过期时间
func (m *TokenManager) Issue(user *model.User) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify 校验签名与有效期，失败时返回 *TokenError
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, &TokenError{Reason: classify(err), Err: err}
	}
	if !token.Valid {
		return nil, &TokenError{Reason: ReasonMalformed, Err: jwt.ErrTokenInvalidClaims}
	}
	return claims, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	default:
		return ReasonMalformed
	}
}

// RequireAdmin 检查管理员标记
func RequireAdmin(claims *Claims) error {
	if claims == nil || !claims.IsAdmin {
		return ErrForbidden
	}
	return nil
}
