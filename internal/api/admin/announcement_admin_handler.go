package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"noticias/internal/api/handler"
	"noticias/internal/constants"
	"noticias/internal/middleware"
	"noticias/internal/model"
	"noticias/internal/service"
	"noticias/internal/types"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnnouncementPublisher 公告发布
type AnnouncementPublisher interface {
	Publish(ctx context.Context, in service.PublishInput) (*model.Announcement, error)
}

// AnnouncementAdminHandler 公告管理处理器
type AnnouncementAdminHandler struct {
	announcementService AnnouncementPublisher
	logger              *logger.Logger
}

// NewAnnouncementAdminHandler 创建公告管理处理器实例
func NewAnnouncementAdminHandler(announcementService AnnouncementPublisher, logger *logger.Logger) *AnnouncementAdminHandler {
	return &AnnouncementAdminHandler{
		announcementService: announcementService,
		logger:              logger,
	}
}

// CreateAnnouncement 创建公告
// @Summary 创建公告
// @Description 管理员发布新公告，作者取自令牌
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param announcement body types.CreateAnnouncementRequest true "公告信息"
// @Success 201 {object} map[string]interface{} "成功"
// @Router /noticias [post]
func (h *AnnouncementAdminHandler) CreateAnnouncement(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrNoToken})
		return
	}

	var req types.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, constants.ErrMissingFields, err)
		return
	}
	// 必填字段检查先于格式检查
	if strings.TrimSpace(req.Content) == "" {
		h.badRequest(c, constants.ErrMissingFields, errBlankContent)
		return
	}

	expiresAt, err := req.ParseExpiration()
	if err != nil {
		h.badRequest(c, constants.ErrInvalidExpiration, err)
		return
	}

	created, err := h.announcementService.Publish(c.Request.Context(), service.PublishInput{
		Content:   req.Content,
		ExpiresAt: expiresAt,
		AuthorID:  claims.ID,
	})
	if err != nil {
		handler.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

var errBlankContent = errors.New("contenido is blank")

// badRequest 记录参数错误原因后返回 400
func (h *AnnouncementAdminHandler) badRequest(c *gin.Context, code string, err error) {
	_ = c.Error(err)
	h.logger.Info("请求参数错误", "route", c.FullPath(), "request_id", middleware.RequestID(c), "code", code, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": code})
}
