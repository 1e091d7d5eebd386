package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	ctxRequestIDKey = "request_id"
)

var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-_.]{7,63}$`)

// RequestID keeps a well-formed incoming X-Request-ID and otherwise assigns a
// fresh one. The id is echoed back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" || !requestIDRe.MatchString(rid) {
			rid = strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		c.Set(ctxRequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID, or "-".
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(ctxRequestIDKey); ok {
		if rid, ok := v.(string); ok && rid != "" {
			return rid
		}
	}
	return "-"
}
