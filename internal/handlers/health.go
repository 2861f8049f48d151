package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness only.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Ready reports 503 while the store cannot be reached.
func Ready(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, detailStoreUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// Root answers GET /api/ with the system name.
func Root(company string) http.HandlerFunc {
	message := company + " Certificate System"
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: message})
	}
}
