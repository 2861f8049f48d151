// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "certify"

var (
	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_issued_total",
		Help:      "Certificates created.",
	})

	// Verifications is labelled by result: valid, invalid or error.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Certificate verification lookups by outcome.",
	}, []string{"result"})

	QRCodesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "qr_codes_generated_total",
		Help:      "Verification QR codes rendered.",
	})

	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Accounts registered.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Rejected login attempts.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	}, []string{"limiter"})
)

// Verification outcomes.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)
