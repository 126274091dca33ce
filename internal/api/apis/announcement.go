package apis

import (
	"noticias/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAnnouncementRoutes 注册公告查询路由
func RegisterAnnouncementRoutes(router *gin.RouterGroup, announcementHandler *handler.AnnouncementHandler) {
	noticias := router.Group("/noticias")
	{
		noticias.GET("", announcementHandler.GetActive)
		noticias.GET("/pasadas", announcementHandler.GetArchived)
	}
}
