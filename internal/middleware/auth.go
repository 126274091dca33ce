package middleware

import (
	"net/http"
	"strings"

	"noticias/internal/auth"
	"noticias/internal/constants"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// TokenVerifier 令牌校验
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate 认证中间件：未认证 -> 已认证。
// 无 Authorization 头返回 no_token，其余任何校验失败统一返回 invalid_token
func Authenticate(tokens TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrNoToken})
			return
		}

		claims, err := tokens.Verify(bearerToken(header))
		if err != nil {
			log.Warn("令牌校验失败", "path", c.FullPath(), "request_id", RequestID(c), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrInvalidToken})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin 授权中间件：已认证 -> 已授权，必须在 Authenticate 之后使用
func RequireAdmin(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrNoToken})
			return
		}

		if err := auth.RequireAdmin(claims); err != nil {
			log.Warn("非管理员尝试访问", "path", c.FullPath(), "user_id", claims.ID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": constants.ErrForbidden})
			return
		}

		c.Next()
	}
}

// Claims 获取已认证用户的令牌载荷
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// bearerToken 取出 "Bearer <token>" 中的令牌；格式不符时返回空串，由校验失败处理
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
