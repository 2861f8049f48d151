// Package store is the persistence layer for certificates and user accounts.
//
// Backends enforce uniqueness of certificate ids, verification ids and
// usernames with storage-level constraints and report violations as
// ErrDuplicate. They perform no other validation.
package store

import (
	"context"
	"errors"

	"github.com/AnshRaj112/certify-backend/internal/models"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
	// ErrUnavailable is returned when the backing database cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// Certificate lookup fields accepted by FindCertificate.
const (
	FieldID             = "id"
	FieldVerificationID = "verification_id"
)

// MarkerAdminBootstrap is claimed exactly once, by the first admin bootstrap.
const MarkerAdminBootstrap = "admin_bootstrap"

type CertificateStore interface {
	InsertCertificate(ctx context.Context, cert *models.Certificate) error
	// FindCertificate returns the certificate whose field equals value.
	FindCertificate(ctx context.Context, field, value string) (*models.Certificate, error)
	// ListCertificates returns certificates in insertion order, at most limit
	// of them when limit > 0.
	ListCertificates(ctx context.Context, limit int64) ([]models.Certificate, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// MarkerStore records one-time operations. ClaimMarker fails with
// ErrDuplicate if name was already claimed.
type MarkerStore interface {
	ClaimMarker(ctx context.Context, name string) error
	ReleaseMarker(ctx context.Context, name string) error
}

// AccountStore is what the account service needs.
type AccountStore interface {
	UserStore
	MarkerStore
}

// Store is a complete backend.
type Store interface {
	CertificateStore
	AccountStore

	// EnsureIndexes creates the collections/tables and uniqueness constraints.
	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func isLookupField(field string) bool {
	return field == FieldID || field == FieldVerificationID
}
