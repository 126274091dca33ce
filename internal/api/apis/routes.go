package apis

import (
	"noticias/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册无需认证的路由
func RegisterPublicRoutes(router *gin.RouterGroup, systemHandler *handler.SystemHandler, announcementHandler *handler.AnnouncementHandler, authHandler *handler.AuthHandler) {
	router.GET("/ping", systemHandler.Ping)
	RegisterAnnouncementRoutes(router, announcementHandler)
	RegisterAuthRoutes(router, authHandler)
}
