package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and lets
// anonymous requests through. Identification works without an account; the
// token only selects the persona tier.
func OptionalAuth(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				c.Set(CtxClaimsKey, claims)
			}
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// IsPremium reports whether the request carries a premium account token.
func IsPremium(c *gin.Context) bool {
	claims := GetClaims(c)
	return claims != nil && claims.Premium
}
