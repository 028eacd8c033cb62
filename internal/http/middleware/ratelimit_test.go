package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per client")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(20 * time.Minute)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.Sweep(now.Add(-10*time.Minute)))
	assert.Len(t, rl.buckets, 1)
}

func TestRateLimitMiddlewareRejectsWithJSON(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	handler := RateLimit(rl)(okHandler(nil))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.RemoteAddr = "192.0.2.7:51000"
	handler.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.RemoteAddr = "192.0.2.7:51001"
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many requests, please try again later."}`, second.Body.String())
}

func TestClientKeyPrefersRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51000"
	assert.Equal(t, "192.0.2.7", clientKey(req))
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientKey(req))
}
