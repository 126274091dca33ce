package repository

import (
	"context"
	"time"

	"noticias/internal/model"

	"github.com/jmoiron/sqlx"
)

// AnnouncementRepository 公告仓库接口
type AnnouncementRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]model.Announcement, error)
	ListArchived(ctx context.Context) ([]model.ArchivedAnnouncement, error)
	Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error)
}

// announcementRepository 公告仓库实现
type announcementRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewAnnouncementRepository 创建公告仓库实例
func NewAnnouncementRepository(db *sqlx.DB, timeout time.Duration) AnnouncementRepository {
	return &announcementRepository{db: db, timeout: timeout}
}

// ListActive 获取截至 now 仍未过期的公告，按发布时间倒序
func (r *announcementRepository) ListActive(ctx context.Context, now time.Time) ([]model.Announcement, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	announcements := []model.Announcement{}
	query := `
		SELECT id_noticia, contenido, fecha_publicacion, fecha_expiracion, id_autor
		FROM noticias
		WHERE fecha_expiracion > ?
		ORDER BY fecha_publicacion DESC
	`
	if err := r.db.SelectContext(ctx, &announcements, query, now); err != nil {
		return nil, storeErr("list active announcements", err)
	}
	return announcements, nil
}

// ListArchived 获取历史公告，按发布时间倒序
func (r *announcementRepository) ListArchived(ctx context.Context) ([]model.ArchivedAnnouncement, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	announcements := []model.ArchivedAnnouncement{}
	query := `
		SELECT id_noticia, contenido, fecha_publicacion, fecha_expiracion
		FROM noticiasPasadas
		ORDER BY fecha_publicacion DESC
	`
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, storeErr("list archived announcements", err)
	}
	return announcements, nil
}

// Create 插入公告后重新读取，返回数据库中实际保存的记录
func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO noticias (contenido, fecha_publicacion, fecha_expiracion, id_autor) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, a.Content, a.PublishedAt, a.ExpiresAt, a.AuthorID)
	if err != nil {
		return nil, storeErr("insert announcement", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, storeErr("insert announcement", err)
	}

	created := &model.Announcement{}
	query = `SELECT id_noticia, contenido, fecha_publicacion, fecha_expiracion, id_autor FROM noticias WHERE id_noticia = ?`
	if err := r.db.GetContext(ctx, created, query, id); err != nil {
		return nil, storeErr("reload announcement", err)
	}
	return created, nil
}
