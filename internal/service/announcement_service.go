package service

import (
	"context"
	"strings"
	"time"

	"noticias/internal/model"
	"noticias/internal/repository"
	"noticias/pkg/logger"
)

// PublishInput 发布公告参数
type PublishInput struct {
	Content   string
	ExpiresAt time.Time
	AuthorID  int64
}

// AnnouncementService 公告服务，每次请求都直接读取数据库
type AnnouncementService struct {
	announcementRepo repository.AnnouncementRepository
	logger           *logger.Logger
	now              func() time.Time
}

// NewAnnouncementService 创建公告服务实例
func NewAnnouncementService(announcementRepo repository.AnnouncementRepository, logger *logger.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// ListActive 获取当前有效的公告
func (s *AnnouncementService) ListActive(ctx context.Context) ([]model.Announcement, error) {
	return s.announcementRepo.ListActive(ctx, s.now())
}

// ListArchived 获取历史公告
func (s *AnnouncementService) ListArchived(ctx context.Context) ([]model.ArchivedAnnouncement, error) {
	return s.announcementRepo.ListArchived(ctx)
}

// Publish 发布公告，发布时间取服务器当前时间并截断到秒，与 DATETIME 列精度一致
func (s *AnnouncementService) Publish(ctx context.Context, in PublishInput) (*model.Announcement, error) {
	if strings.TrimSpace(in.Content) == "" || in.ExpiresAt.IsZero() {
		return nil, errMissingFields
	}

	created, err := s.announcementRepo.Create(ctx, &model.Announcement{
		Content:     in.Content,
		PublishedAt: s.now().Truncate(time.Second),
		ExpiresAt:   in.ExpiresAt,
		AuthorID:    in.AuthorID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("公告已发布", "id", created.ID, "author_id", created.AuthorID)
	return created, nil
}
