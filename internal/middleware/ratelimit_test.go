package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisRateLimiter(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.Limit = 3
	return l, mr
}

func TestRedisRateLimiter_BlocksAfterLimit(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	h := l.Middleware(okHandler)

	for i := 1; i <= 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.7:4000"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.True(t, mr.Exists(RateLimitKeyPrefix+"192.0.2.7"))
	assert.Equal(t, RateLimitWindow, mr.TTL(RateLimitKeyPrefix+"192.0.2.7"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.7:4000"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists(BlockedIPKeyPrefix+"192.0.2.7"))

	// the block outlives the counting window
	mr.FastForward(RateLimitWindow + time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.7:4000"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	mr.FastForward(BlockedIPDuration)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.7:4000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisRateLimiter_WindowResets(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	h := l.Middleware(okHandler)

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), requestFrom(http.MethodGet, "/api/", "192.0.2.8:4000"))
	}
	mr.FastForward(RateLimitWindow + time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.8:4000"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	mr.Close()

	rec := httptest.NewRecorder()
	l.Middleware(okHandler).ServeHTTP(rec, requestFrom(http.MethodGet, "/api/", "192.0.2.9:4000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
