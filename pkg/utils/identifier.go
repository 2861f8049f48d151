package utils

import "github.com/google/uuid"

// NewIdentifier returns a random (v4) UUID in canonical text form.
func NewIdentifier() string {
	return uuid.NewString()
}
