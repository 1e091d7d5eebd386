package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessLog writes one line per request. The body and query are never logged;
// only method, path, status, duration and ids.
func AccessLog(trustedProxyHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Printf("http %s %s status=%d duration_ms=%d request_id=%s ip=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			GetRequestID(c),
			ClientIP(c, trustedProxyHeaders),
		)
	}
}
