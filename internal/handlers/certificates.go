package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CertificateService is the subset of services.CertificateService the
// handlers call.
type CertificateService interface {
	Create(ctx context.Context, in models.CertificateInput) (*models.Certificate, error)
	GetByID(ctx context.Context, id string) (*models.Certificate, error)
	ListAll(ctx context.Context) ([]models.Certificate, error)
	VerifyByVerificationID(ctx context.Context, verificationID string) (*models.Verification, error)
	GenerateQR(ctx context.Context, verificationID string) (*models.QRCode, error)
}

// CreateCertificateRequest fields are pointers so a missing field can be told
// apart from an empty string. Values are stored as given.
type CreateCertificateRequest struct {
	InternName *string `json:"intern_name" validate:"required"`
	Role       *string `json:"role" validate:"required"`
	Duration   *string `json:"duration" validate:"required"`
	Mode       *string `json:"mode" validate:"required"`
	StartDate  *string `json:"start_date" validate:"required"`
	EndDate    *string `json:"end_date" validate:"required"`
}

func (req CreateCertificateRequest) input() models.CertificateInput {
	return models.CertificateInput{
		InternName: deref(req.InternName),
		Role:       deref(req.Role),
		Duration:   deref(req.Duration),
		Mode:       deref(req.Mode),
		StartDate:  deref(req.StartDate),
		EndDate:    deref(req.EndDate),
	}
}

// CertificateHandler serves issuance, lookup, verification and QR routes.
type CertificateHandler struct {
	certificates CertificateService
	validate     *validator.Validate
}

func NewCertificateHandler(certificates CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, validate: newValidator()}
}

// CertificateRouter registers certificate routes on the given /api router.
func CertificateRouter(r chi.Router, certificates CertificateService) {
	h := NewCertificateHandler(certificates)

	r.Route("/certificates", func(r chi.Router) {
		r.Post("/", h.CreateCertificate)
		r.Get("/", h.ListCertificates)
		r.Get("/{id}", h.GetCertificate)
	})
	r.Get("/verify/{verification_id}", h.VerifyCertificate)
	r.Post("/generate-qr/{verification_id}", h.GenerateQR)
}

func (h *CertificateHandler) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	var req CreateCertificateRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cert, err := h.certificates.Create(ctx, req.input())
	if err != nil {
		writeServiceError(w, err, "creating certificate", "")
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cert, err := h.certificates.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "fetching certificate", "Certificate not found")
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	certs, err := h.certificates.ListAll(ctx)
	if err != nil {
		writeServiceError(w, err, "fetching certificates", "")
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

// VerifyCertificate always answers 200 unless the store fails; an unknown
// verification id is reported through is_valid.
func (h *CertificateHandler) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.certificates.VerifyByVerificationID(ctx, chi.URLParam(r, "verification_id"))
	if err != nil {
		writeServiceError(w, err, "verifying certificate", "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CertificateHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	qr, err := h.certificates.GenerateQR(ctx, chi.URLParam(r, "verification_id"))
	if err != nil {
		writeServiceError(w, err, "generating QR code", "Certificate not found")
		return
	}
	writeJSON(w, http.StatusOK, qr)
}
