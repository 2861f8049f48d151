package models

import "time"

// Delivery modes an internship can be recorded with. The value is stored as
// given; these are the two the frontend offers.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Certificate is an issued internship completion certificate. Records are
// immutable once inserted.
type Certificate struct {
	ID             string    `bson:"id" json:"id"`
	VerificationID string    `bson:"verification_id" json:"verification_id"`
	InternName     string    `bson:"intern_name" json:"intern_name"`
	Role           string    `bson:"role" json:"role"`
	Duration       string    `bson:"duration" json:"duration"`
	Mode           string    `bson:"mode" json:"mode"`
	StartDate      string    `bson:"start_date" json:"start_date"`
	EndDate        string    `bson:"end_date" json:"end_date"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`

	IssuedBy      string `bson:"issued_by" json:"issued_by"`
	IssuedByTitle string `bson:"issued_by_title" json:"issued_by_title"`
	Company       string `bson:"company" json:"company"`
}

// CertificateInput holds the per-intern fields supplied when issuing.
type CertificateInput struct {
	InternName string
	Role       string
	Duration   string
	Mode       string
	StartDate  string
	EndDate    string
}

// Issuer is stamped onto every certificate at creation.
type Issuer struct {
	Name    string
	Title   string
	Company string
}

// Verification is the outcome of a public verification lookup.
type Verification struct {
	VerificationID  string       `json:"verification_id"`
	IsValid         bool         `json:"is_valid"`
	CertificateData *Certificate `json:"certificate_data"`
	Message         string       `json:"message"`
}

// QRCode is a rendered verification QR code.
type QRCode struct {
	QRCode          string `json:"qr_code"`
	VerificationURL string `json:"verification_url"`
}
