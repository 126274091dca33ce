package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler 系统处理器
type SystemHandler struct{}

// NewSystemHandler 创建系统处理器实例
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Ping 健康检查
// @Router /ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
