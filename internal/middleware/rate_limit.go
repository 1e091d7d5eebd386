package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tenseii/internal/apperr"
)

type RateLimitConfig struct {
	Enabled             bool
	Requests            int
	Window              time.Duration
	TrustedProxyHeaders bool
}

// RateLimiter keeps a token bucket per client IP. Idle entries are evicted so
// the map does not grow without bound.
type RateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg, clients: make(map[string]*clientLimiter)}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.clients[ip]; ok {
		cl.lastSeen = now
		return cl.limiter
	}

	// Opportunistic eviction on insert keeps this lock cheap.
	staleAfter := 3 * rl.cfg.Window
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > staleAfter {
			delete(rl.clients, key)
		}
	}

	limiter := rate.NewLimiter(rate.Limit(float64(rl.cfg.Requests)/rl.cfg.Window.Seconds()), rl.cfg.Requests)
	rl.clients[ip] = &clientLimiter{limiter: limiter, lastSeen: now}
	return limiter
}

// Middleware rejects over-limit requests with 429 and a Retry-After hint.
// OPTIONS preflights are never limited.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.cfg.Enabled || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		ip := ClientIP(c, rl.cfg.TrustedProxyHeaders)
		if !rl.limiterFor(ip).Allow() {
			retryAfter := int(rl.cfg.Window.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			apperr.Respond(c, GetLocale(c), GetRequestID(c), apperr.RateLimited(retryAfter))
			return
		}

		c.Next()
	}
}
