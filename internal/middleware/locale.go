package middleware

import (
	"github.com/gin-gonic/gin"

	"tenseii/internal/i18n"
)

const ctxLocaleKey = "locale"

// Locale negotiates the response locale once per request and stores it in the
// gin context for handlers and error responses.
func Locale(defaultLocale, localeHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxLocaleKey, i18n.Infer(c.Request.Header, defaultLocale, localeHeader))
		c.Next()
	}
}

// GetLocale returns the negotiated locale, defaulting to "ru".
func GetLocale(c *gin.Context) string {
	if v, ok := c.Get(ctxLocaleKey); ok {
		if locale, ok := v.(string); ok && locale != "" {
			return locale
		}
	}
	return "ru"
}
