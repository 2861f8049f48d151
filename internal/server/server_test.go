package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/AnshRaj112/certify-backend/internal/app"
	"github.com/AnshRaj112/certify-backend/internal/config"
	"github.com/AnshRaj112/certify-backend/internal/middleware"
	"github.com/AnshRaj112/certify-backend/internal/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "development",
		Port:           "0",
		StoreDriver:    config.DriverMemory,
		VerifyBaseURL:  "http://localhost:3000",
		ListLimit:      1000,
		IssuerName:     "A Siddarth Reddy",
		IssuerTitle:    "Chief Technology Officer",
		IssuerCompany:  "DNOT Technologies",
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
		AdminFullName:  "System Administrator",
		AllowedOrigins: []string{"*"},
	}
}

func newTestApp(cfg *config.Config, s store.Store) *app.App {
	return app.NewWithStore(cfg, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(t *testing.T, a *app.App) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(a).Router())
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T, cfg *config.Config, s store.Store) *httptest.Server {
	t.Helper()
	return serve(t, newTestApp(cfg, s))
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	return send(t, http.MethodGet, url, header)
}

func send(t *testing.T, method, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, testConfig(), store.NewMemoryStore())

	resp, body := get(t, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	resp, _ = get(t, ts.URL+"/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ReadyWithoutDatabase(t *testing.T) {
	ts := newTestServer(t, testConfig(), store.NewMongoStore(nil))

	resp, body := get(t, ts.URL+"/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Database not available"}`, body)

	// liveness does not depend on the database
	resp, _ = get(t, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_APIAllowsAnyOrigin(t *testing.T) {
	ts := newTestServer(t, testConfig(), store.NewMemoryStore())

	resp, body := get(t, ts.URL+"/api/", http.Header{"Origin": {"https://anywhere.example"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"DNOT Technologies Certificate System"}`, body)
	assert.Equal(t, "https://anywhere.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, testConfig(), store.NewMemoryStore())

	get(t, ts.URL+"/api/verify/not-a-real-id", nil)
	resp, body := get(t, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `certify_verifications_total{result="invalid"}`)
	assert.True(t, strings.Contains(body, `route="/api/verify/{verification_id}"`), "route pattern label missing")
}

func TestServer_ProductionHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	ts := newTestServer(t, cfg, store.NewMemoryStore())

	resp, _ := get(t, ts.URL+"/health", nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func countStatus(t *testing.T, n int, status int, req func(i int) *http.Response) int {
	t.Helper()
	hits := 0
	for i := 0; i < n; i++ {
		if req(i).StatusCode == status {
			hits++
		}
	}
	return hits
}

func TestServer_ForwardedForIgnoredByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	ts := newTestServer(t, cfg, store.NewMemoryStore())

	limited := countStatus(t, 40, http.StatusTooManyRequests, func(i int) *http.Response {
		resp, _ := get(t, ts.URL+"/api/", http.Header{
			"X-Forwarded-For": {"198.51.100." + strconv.Itoa(i+1)},
			"X-Real-Ip":       {"203.0.113." + strconv.Itoa(i+1)},
		})
		return resp
	})
	assert.Positive(t, limited, "rotating forwarded headers must not yield fresh limiter buckets")
}

func TestServer_TrustProxyKeysOnForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	cfg.TrustProxy = true
	ts := newTestServer(t, cfg, store.NewMemoryStore())

	limited := countStatus(t, 20, http.StatusTooManyRequests, func(i int) *http.Response {
		resp, _ := get(t, ts.URL+"/api/", http.Header{"X-Forwarded-For": {"198.51.100." + strconv.Itoa(i+1)}})
		return resp
	})
	assert.Zero(t, limited)
}

func TestServer_RedisLimiterOnlyCoversAPI(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := newTestApp(testConfig(), store.NewMemoryStore())
	a.Redis = client
	ts := serve(t, a)

	n := middleware.RateLimitMaxRequests + 5
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		ok := countStatus(t, n, http.StatusOK, func(int) *http.Response {
			resp, _ := get(t, ts.URL+path, nil)
			return resp
		})
		assert.Equal(t, n, ok, path)
	}

	preflight := http.Header{
		"Origin":                        {"https://anywhere.example"},
		"Access-Control-Request-Method": {"POST"},
	}
	limited := countStatus(t, n, http.StatusTooManyRequests, func(int) *http.Response {
		resp, _ := send(t, http.MethodOptions, ts.URL+"/api/login", preflight)
		return resp
	})
	assert.Zero(t, limited, "preflights must not be rate limited")
	assert.False(t, mr.Exists(middleware.BlockedIPKeyPrefix+"127.0.0.1"))

	origin := http.Header{"Origin": {"https://anywhere.example"}}
	for i := 0; i < middleware.RateLimitMaxRequests; i++ {
		resp, _ := get(t, ts.URL+"/api/", origin)
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
	}
	resp, _ := get(t, ts.URL+"/api/", origin)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "https://anywhere.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = get(t, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
