package handler

import (
	"context"
	"net/http"

	"noticias/internal/model"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnnouncementReader 公告查询
type AnnouncementReader interface {
	ListActive(ctx context.Context) ([]model.Announcement, error)
	ListArchived(ctx context.Context) ([]model.ArchivedAnnouncement, error)
}

// AnnouncementHandler 公告处理器
type AnnouncementHandler struct {
	announcementService AnnouncementReader
	logger              *logger.Logger
}

// NewAnnouncementHandler 创建公告处理器实例
func NewAnnouncementHandler(announcementService AnnouncementReader, logger *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
		logger:              logger,
	}
}

// GetActive 获取有效公告列表
// @Summary 获取有效公告
// @Tags 公告
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /noticias [get]
func (h *AnnouncementHandler) GetActive(c *gin.Context) {
	announcements, err := h.announcementService.ListActive(c.Request.Context())
	if err != nil {
		WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcements})
}

// GetArchived 获取历史公告列表
// @Summary 获取历史公告
// @Tags 公告
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /noticias/pasadas [get]
func (h *AnnouncementHandler) GetArchived(c *gin.Context) {
	announcements, err := h.announcementService.ListArchived(c.Request.Context())
	if err != nil {
		WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcements})
}
