package handler

import (
	"errors"
	"net/http"

	"noticias/internal/auth"
	"noticias/internal/constants"
	"noticias/internal/middleware"
	"noticias/internal/repository"
	"noticias/internal/service"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WriteError 将各层错误映射为状态码与错误码，具体原因只写入日志
func WriteError(c *gin.Context, log *logger.Logger, err error) {
	route := c.FullPath()
	requestID := middleware.RequestID(c)
	_ = c.Error(err)

	var validationErr *service.ValidationError
	var tokenErr *auth.TokenError
	var storeErr *repository.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Code})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Info("登录失败", "route", route, "request_id", requestID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrInvalidCredentials})
	case errors.As(err, &tokenErr):
		log.Warn("令牌校验失败", "route", route, "request_id", requestID, "reason", tokenErr.Reason)
		c.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrInvalidToken})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": constants.ErrForbidden})
	case errors.As(err, &storeErr):
		log.Error("数据库错误", "route", route, "request_id", requestID, "op", storeErr.Op, storeErr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrDatabase})
	default:
		log.Error("服务器内部错误", "route", route, "request_id", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrInternalServer})
	}
}
