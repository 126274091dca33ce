package middleware

import (
	"net/http"
	"time"

	"noticias/internal/constants"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
	"k8s.io/apimachinery/pkg/util/rand"
)

// RequestIDHeader 请求ID响应头
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Logger 日志中间件
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = rand.String(16)
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// 处理请求
		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"request_id", requestID,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		log.Info("access", fields...)
	}
}

// RequestID 获取当前请求ID
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery 恢复中间件
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("服务器错误", "panic", err, "path", c.Request.URL.Path, "request_id", RequestID(c))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": constants.ErrInternalServer})
			}
		}()
		c.Next()
	}
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
