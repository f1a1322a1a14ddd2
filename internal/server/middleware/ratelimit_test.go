package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newLimiter(t *testing.T, limit int) *RateLimiter {
	t.Helper()
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, limit, &logger)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newLimiter(t, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per IP")
	assert.Equal(t, 2, rl.VisitorCount())
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newLimiter(t, 1)
	rl.window = 20 * time.Millisecond

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Purge(t *testing.T) {
	rl := newLimiter(t, 1)
	rl.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.purge(time.Millisecond)
	assert.Zero(t, rl.VisitorCount())
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := newLimiter(t, 1)
	handler := RateLimit(rl)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Same host, different port.
	req.RemoteAddr = "192.0.2.1:5678"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
