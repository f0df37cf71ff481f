package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDを受け渡すヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// GinMiddleware はリクエストIDを付与し、完了時にアクセスログを出力します。
// クライアントが X-Request-ID を送った場合はそれを引き継ぎます。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := FromContext(c.Request.Context())
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed", time.Since(start),
		}
		switch {
		case status >= 500:
			l.Error("http request failed", attrs...)
		case status >= 400:
			l.Warn("http request rejected", attrs...)
		default:
			l.Info("http request", attrs...)
		}
	}
}
