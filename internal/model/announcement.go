package model

import "time"

// Announcement 有效公告（noticias 表）
type Announcement struct {
	ID          int64     `db:"id_noticia" json:"id_noticia"`
	Content     string    `db:"contenido" json:"contenido"`
	PublishedAt time.Time `db:"fecha_publicacion" json:"fecha_publicacion"`
	ExpiresAt   time.Time `db:"fecha_expiracion" json:"fecha_expiracion"`
	AuthorID    int64     `db:"id_autor" json:"id_autor"`
}

// ArchivedAnnouncement 历史公告（noticiasPasadas 表），不含作者
type ArchivedAnnouncement struct {
	ID          int64     `db:"id_noticia" json:"id_noticia"`
	Content     string    `db:"contenido" json:"contenido"`
	PublishedAt time.Time `db:"fecha_publicacion" json:"fecha_publicacion"`
	ExpiresAt   time.Time `db:"fecha_expiracion" json:"fecha_expiracion"`
}

// IsActive 判断公告在给定时间是否仍然有效
func (a Announcement) IsActive(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}
