package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP resolves the caller's address. Proxy headers are honored only when
// the deployment declares a trusted proxy in front of the service.
func ClientIP(c *gin.Context, trustedProxyHeaders bool) string {
	if trustedProxyHeaders {
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xrip := strings.TrimSpace(c.GetHeader("X-Real-Ip")); xrip != "" {
			return xrip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil || host == "" {
		if c.Request.RemoteAddr != "" {
			return c.Request.RemoteAddr
		}
		return "-"
	}
	return host
}
