package types

import (
	"errors"
	"strings"
	"time"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateAnnouncementRequest 发布公告请求
type CreateAnnouncementRequest struct {
	Content   string `json:"contenido" binding:"required"`
	ExpiresAt string `json:"fecha_expiracion" binding:"required"`
}

// ErrInvalidExpiration 过期时间无法解析
var ErrInvalidExpiration = errors.New("invalid fecha_expiracion")

// 不带时区的格式按服务器本地时间解析
var expirationLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseExpiration 解析过期时间，支持 RFC 3339 以及 MySQL DATETIME 常见格式
func (r *CreateAnnouncementRequest) ParseExpiration() (time.Time, error) {
	value := strings.TrimSpace(r.ExpiresAt)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range expirationLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidExpiration
}
