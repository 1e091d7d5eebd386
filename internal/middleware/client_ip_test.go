package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func clientIPFor(t *testing.T, trusted bool, remoteAddr string, headers map[string]string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return ClientIP(c, trusted)
}

func TestClientIPFromRemoteAddr(t *testing.T) {
	got := clientIPFor(t, false, "203.0.113.7:5123", nil)
	if got != "203.0.113.7" {
		t.Fatalf("unexpected ip: %q", got)
	}
}

func TestClientIPIgnoresHeadersWhenUntrusted(t *testing.T) {
	got := clientIPFor(t, false, "203.0.113.7:5123", map[string]string{
		"X-Forwarded-For": "198.51.100.1",
	})
	if got != "203.0.113.7" {
		t.Fatalf("spoofable header honored without trust: %q", got)
	}
}

func TestClientIPHonorsForwardedForWhenTrusted(t *testing.T) {
	got := clientIPFor(t, true, "10.0.0.1:5123", map[string]string{
		"X-Forwarded-For": "198.51.100.1, 10.0.0.1",
	})
	if got != "198.51.100.1" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestClientIPFallsBackToRealIP(t *testing.T) {
	got := clientIPFor(t, true, "10.0.0.1:5123", map[string]string{
		"X-Real-Ip": "198.51.100.2",
	})
	if got != "198.51.100.2" {
		t.Fatalf("expected real-ip header, got %q", got)
	}
}
