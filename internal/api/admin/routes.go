package admin

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员路由，router 需已挂载认证与管理员中间件
func RegisterAdminRoutes(router *gin.RouterGroup, announcementAdminHandler *AnnouncementAdminHandler) {
	router.POST("/noticias", announcementAdminHandler.CreateAnnouncement)
}
