package server

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエスト ID を運ぶヘッダーです。
const HeaderRequestID = "X-Request-Id"

const ctxKeyRequestID = "request_id"

// RequestIDMiddleware は受け取った X-Request-Id を引き継ぎ、無ければ採番します。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID はコンテキストに設定されたリクエスト ID を返します。
func RequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// AccessLogMiddleware は slog でアクセスログを出し、メトリクスを記録します。
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(elapsed.Seconds())

		slog.InfoContext(c.Request.Context(), "HTTP リクエスト",
			"request_id", RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed,
		)
	}
}
