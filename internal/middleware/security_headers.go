package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets conservative browser-facing headers on every response.
func SecurityHeaders() gin.HandlerFunc {
	headers := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Permissions-Policy":           "geolocation=(), microphone=(), camera=()",
		"Cross-Origin-Resource-Policy": "same-site",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Embedder-Policy": "require-corp",
	}
	return func(c *gin.Context) {
		for k, v := range headers {
			if c.Writer.Header().Get(k) == "" {
				c.Header(k, v)
			}
		}
		c.Next()
	}
}
