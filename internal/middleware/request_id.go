package middleware

import (
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDMiddleware 透传或生成请求 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(util.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(util.ContextRequestIDKey, requestID)
		c.Header(util.RequestIDHeader, requestID)
		c.Next()
	}
}

// AccessLogMiddleware 使用 zap 记录访问日志
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(util.ContextRequestIDKey)),
		)
	}
}
