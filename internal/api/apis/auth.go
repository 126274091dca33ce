package apis

import (
	"noticias/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证路由
func RegisterAuthRoutes(router *gin.RouterGroup, authHandler *handler.AuthHandler) {
	router.POST("/auth/login", authHandler.Login)
}
