package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/app"
	"github.com/AnshRaj112/certify-backend/internal/middleware"
	"github.com/AnshRaj112/certify-backend/internal/routes"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// New builds the router over a wired App.
func New(a *app.App) *Server {
	cfg := a.Config

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	// Forwarded headers are client-controlled unless a proxy overwrites them.
	if cfg.TrustProxy {
		router.Use(chimw.RealIP)
	}
	router.Use(
		middleware.RequestLogger(a.Logger),
		chimw.Recoverer,
		middleware.Metrics,
	)

	// Production: SecurityHeaders everywhere, GlobalRateLimit → LoginRateLimit on /api.
	// The Redis limiter is added whenever Redis is configured.
	var limiters []func(http.Handler) http.Handler
	if cfg.IsProduction() {
		router.Use(middleware.SecurityHeaders)
		limiters = append(limiters, middleware.ProductionRateLimits()...)
		a.Logger.Info("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	}
	if a.Redis != nil {
		limiters = append(limiters, middleware.NewRedisRateLimiter(a.Redis, a.Logger).Middleware)
	}

	routes.SetupRoutes(router, routes.Dependencies{
		Certificates:   a.Certificates,
		Accounts:       a.Accounts,
		Store:          a.Store,
		Company:        cfg.IssuerCompany,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiters:       limiters,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		router: router,
		log:    a.Logger,
	}
}

// Router exposes the chi router.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("🚀 Certificate backend running", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
