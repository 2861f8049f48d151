package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/metrics"
	"github.com/AnshRaj112/certify-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked (24 hours)
	BlockedIPDuration = 24 * time.Hour
)

// RedisRateLimiter counts requests per IP in Redis so the limit holds across
// replicas. An IP that exceeds the window limit is blocked for BlockedIPDuration.
type RedisRateLimiter struct {
	client *redis.Client
	log    *slog.Logger

	Limit  int
	Window time.Duration
	Block  time.Duration
}

func NewRedisRateLimiter(client *redis.Client, logger *slog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		log:    logger,
		Limit:  RateLimitMaxRequests,
		Window: RateLimitWindow,
		Block:  BlockedIPDuration,
	}
}

// Middleware provides rate limiting with IP blocking. Redis failures let the
// request through. Preflights are not counted.
func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		ip := clientip.RealClientIP(r)
		blockedKey := BlockedIPKeyPrefix + ip

		blocked, err := l.client.Exists(ctx, blockedKey).Result()
		if err == nil && blocked > 0 {
			metrics.RateLimited.WithLabelValues("redis_blocked").Inc()
			tooManyRequests(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		key := RateLimitKeyPrefix + ip
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.log.WarnContext(ctx, "rate limiter unavailable, allowing request", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			// First request in this window
			l.client.Expire(ctx, key, l.Window)
		}

		if count > int64(l.Limit) {
			if err := l.client.Set(ctx, blockedKey, "1", l.Block).Err(); err != nil {
				l.log.WarnContext(ctx, "block ip", slog.String("ip", ip), slog.Any("error", err))
			} else {
				l.log.InfoContext(ctx, "ip blocked", slog.String("ip", ip), slog.Int64("requests", count))
			}
			metrics.RateLimited.WithLabelValues("redis").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(l.Window.Seconds())))
			tooManyRequests(w, "Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(l.Limit)-count, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.Window).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}
