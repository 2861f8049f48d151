package services

import (
	"errors"
	"fmt"

	"github.com/AnshRaj112/certify-backend/internal/store"
)

// Errors returned by the services. Handlers map them to status codes with
// errors.Is; anything else is an internal fault.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrUnauthorized     = errors.New("invalid username or password")
	ErrStoreUnavailable = errors.New("database not available")
)

// translate converts a store error into the service taxonomy, keeping the
// original message for diagnostics.
func translate(action string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%s: %w: %v", action, ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w: %v", action, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
