package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Locale("ru", "X-Locale"), NewRateLimiter(cfg).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	r := newLimitedRouter(RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		if w := doGet(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d within limit got %d", i, w.Code)
		}
	}

	w := doGet(r, "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "rate_limited" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
	if body.RequestID == "" {
		t.Fatal("error envelope must carry the request id")
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	r := newLimitedRouter(RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute})

	if w := doGet(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client first request got %d", w.Code)
	}
	if w := doGet(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request got %d", w.Code)
	}
	if w := doGet(r, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("second client must have its own bucket, got %d", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newLimitedRouter(RateLimitConfig{Enabled: false, Requests: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		if w := doGet(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("disabled limiter rejected request %d with %d", i, w.Code)
		}
	}
}

func TestRateLimiterSkipsPreflight(t *testing.T) {
	r := newLimitedRouter(RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("preflight %d must not be limited, got %d", i, w.Code)
		}
	}
}
