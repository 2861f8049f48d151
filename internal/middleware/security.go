package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/metrics"
	"github.com/AnshRaj112/certify-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const (
	globalRateLimitRPS   = 1
	globalRateLimitBurst = 10

	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 2

	limiterSweepInterval = 5 * time.Minute
	limiterTTL           = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiter keeps one token bucket per client IP. Idle buckets are dropped
// during lookups once per sweep interval.
type ipLimiter struct {
	name  string
	limit rate.Limit
	burst int

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(name string, limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		name:      name,
		limit:     limit,
		burst:     burst,
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterSweepInterval {
		for key, e := range l.entries {
			if now.Sub(e.lastUse) > limiterTTL {
				delete(l.entries, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *ipLimiter) middleware(paths map[string]bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || (paths != nil && !paths[r.URL.Path]) {
				next.ServeHTTP(w, r)
				return
			}
			if !l.allow(clientip.RealClientIP(r)) {
				metrics.RateLimited.WithLabelValues(l.name).Inc()
				tooManyRequests(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit() func(http.Handler) http.Handler {
	return newIPLimiter("global", rate.Limit(globalRateLimitRPS), globalRateLimitBurst).
		middleware(nil, "Too many requests. Please slow down.")
}

var loginPaths = map[string]bool{
	"/api/login":        true,
	"/api/create-admin": true,
}

// LoginRateLimit applies a stricter limit to credential routes only. Use after GlobalRateLimit.
func LoginRateLimit() func(http.Handler) http.Handler {
	return newIPLimiter("login", rate.Every(loginRateLimitEvery), loginRateLimitBurst).
		middleware(loginPaths, "Too many login attempts. Please try again later.")
}

// ProductionRateLimits returns the per-IP limiters for production: GlobalRateLimit → LoginRateLimit.
// Mount them after CORS so preflights and 429s still carry CORS headers.
func ProductionRateLimits() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		GlobalRateLimit(),
		LoginRateLimit(),
	}
}

func tooManyRequests(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"detail":"` + message + `"}`))
}
