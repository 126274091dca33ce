package handler

import (
	"context"
	"net/http"

	"noticias/internal/constants"
	"noticias/internal/middleware"
	"noticias/internal/service"
	"noticias/internal/types"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Authenticator 登录
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

// AuthHandler 登录处理器
type AuthHandler struct {
	authService Authenticator
	logger      *logger.Logger
}

// NewAuthHandler 创建登录处理器实例
func NewAuthHandler(authService Authenticator, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login 用户登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body types.LoginRequest true "用户名和密码"
// @Success 200 {object} map[string]interface{} "token 与 is_admin"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		h.logger.Info("登录参数错误", "route", c.FullPath(), "request_id", middleware.RequestID(c), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrMissingCredentials})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(c, h.logger, err)
		return
	}

	h.logger.Info("用户登录", "user_id", result.User.ID, "is_admin", result.User.IsAdmin)
	c.JSON(http.StatusOK, gin.H{
		"token":    result.Token,
		"is_admin": result.User.IsAdmin,
	})
}
