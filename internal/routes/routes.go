package routes

import (
	"net/http"

	"github.com/AnshRaj112/certify-backend/internal/handlers"
	"github.com/AnshRaj112/certify-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the routes dispatch to.
type Dependencies struct {
	Certificates   handlers.CertificateService
	Accounts       handlers.AccountService
	Store          handlers.Pinger
	Company        string
	AllowedOrigins []string
	// Limiters run inside /api after CORS. Operational endpoints are never limited.
	Limiters []func(http.Handler) http.Handler
}

func SetupRoutes(r chi.Router, deps Dependencies) {
	// Operational endpoints (no CORS)
	r.Get("/health", handlers.Healthz)
	r.Get("/health/ready", handlers.Ready(deps.Store))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(deps.AllowedOrigins))
		r.Use(deps.Limiters...)

		r.Get("/", handlers.Root(deps.Company))

		// Accounts
		handlers.AccountRouter(r, deps.Accounts)

		// Certificates, verification and QR codes
		handlers.CertificateRouter(r, deps.Certificates)
	})
}
