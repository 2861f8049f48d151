package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/metrics"
	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/AnshRaj112/certify-backend/internal/store"
	"github.com/AnshRaj112/certify-backend/pkg/utils"
)

// DefaultListLimit caps ListAll when no limit is configured.
const DefaultListLimit = 1000

const (
	verifiedMessage   = "Certificate is valid and verified"
	unverifiedMessage = "Certificate not found or invalid"
)

type CertificateOptions struct {
	Issuer        models.Issuer
	VerifyBaseURL string
	ListLimit     int64
	Logger        *slog.Logger
}

// CertificateService issues certificates and answers verification lookups.
// It keeps no state of its own between calls.
type CertificateService struct {
	store   store.CertificateStore
	issuer  models.Issuer
	baseURL string
	limit   int64
	log     *slog.Logger

	now   func() time.Time
	newID func() string
}

// timestamp is the creation time stamped on new records. Mongo keeps
// milliseconds, so finer precision would not survive a round trip.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func NewCertificateService(s store.CertificateStore, opts CertificateOptions) *CertificateService {
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.VerifyBaseURL == "" {
		opts.VerifyBaseURL = utils.DefaultVerifyBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CertificateService{
		store:   s,
		issuer:  opts.Issuer,
		baseURL: opts.VerifyBaseURL,
		limit:   opts.ListLimit,
		log:     opts.Logger.With("component", "certificates"),
		now:     timestamp,
		newID:   utils.NewIdentifier,
	}
}

// Create issues a new certificate. Fields are stored as given; presence is
// checked by the caller.
func (s *CertificateService) Create(ctx context.Context, in models.CertificateInput) (*models.Certificate, error) {
	id := s.newID()
	verificationID := s.newID()
	for verificationID == id {
		verificationID = s.newID()
	}

	cert := &models.Certificate{
		ID:             id,
		VerificationID: verificationID,
		InternName:     in.InternName,
		Role:           in.Role,
		Duration:       in.Duration,
		Mode:           in.Mode,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		CreatedAt:      s.now(),
		IssuedBy:       s.issuer.Name,
		IssuedByTitle:  s.issuer.Title,
		Company:        s.issuer.Company,
	}

	if err := s.store.InsertCertificate(ctx, cert); err != nil {
		return nil, translate("create certificate", err)
	}

	metrics.CertificatesIssued.Inc()
	s.log.InfoContext(ctx, "certificate issued",
		slog.String("id", cert.ID),
		slog.String("verification_id", cert.VerificationID),
		slog.String("role", cert.Role))
	return cert, nil
}

func (s *CertificateService) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.store.FindCertificate(ctx, store.FieldID, id)
	if err != nil {
		return nil, translate("get certificate", err)
	}
	return cert, nil
}

// ListAll returns certificates in insertion order, at most the configured limit.
func (s *CertificateService) ListAll(ctx context.Context) ([]models.Certificate, error) {
	certs, err := s.store.ListCertificates(ctx, s.limit)
	if err != nil {
		return nil, translate("list certificates", err)
	}
	return certs, nil
}

// VerifyByVerificationID looks a certificate up by its public identifier.
// An unknown identifier is a negative result, not an error.
func (s *CertificateService) VerifyByVerificationID(ctx context.Context, verificationID string) (*models.Verification, error) {
	cert, err := s.store.FindCertificate(ctx, store.FieldVerificationID, verificationID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.Verifications.WithLabelValues(metrics.ResultInvalid).Inc()
		return &models.Verification{
			VerificationID: verificationID,
			IsValid:        false,
			Message:        unverifiedMessage,
		}, nil
	case err != nil:
		metrics.Verifications.WithLabelValues(metrics.ResultError).Inc()
		return nil, translate("verify certificate", err)
	}

	metrics.Verifications.WithLabelValues(metrics.ResultValid).Inc()
	return &models.Verification{
		VerificationID:  verificationID,
		IsValid:         true,
		CertificateData: cert,
		Message:         verifiedMessage,
	}, nil
}

// GenerateQR renders the verification QR code for an existing certificate.
func (s *CertificateService) GenerateQR(ctx context.Context, verificationID string) (*models.QRCode, error) {
	if _, err := s.store.FindCertificate(ctx, store.FieldVerificationID, verificationID); err != nil {
		return nil, translate("generate qr", err)
	}

	dataURI, url, err := utils.GenerateQRCode(s.baseURL, verificationID)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}

	metrics.QRCodesGenerated.Inc()
	return &models.QRCode{QRCode: dataURI, VerificationURL: url}, nil
}
