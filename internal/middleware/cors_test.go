package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_AnyOrigin(t *testing.T) {
	h := CORS([]string{"*"})(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/verify/abc", nil)
	r.Header.Set("Origin", "https://verifier.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://verifier.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"*"})(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/certificates", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_RestrictedList(t *testing.T) {
	h := CORS([]string{"https://certs.example.com"})(okHandler)

	allowed := httptest.NewRequest(http.MethodGet, "/api/", nil)
	allowed.Header.Set("Origin", "https://certs.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, allowed)
	assert.Equal(t, "https://certs.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	other := httptest.NewRequest(http.MethodGet, "/api/", nil)
	other.Header.Set("Origin", "https://evil.example.net")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
