package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/AnshRaj112/certify-backend/internal/models"
)

// MemoryStore keeps records in process memory. It is used by tests and by
// local runs with STORE_DRIVER=memory.
type MemoryStore struct {
	mu           sync.RWMutex
	certificates []models.Certificate
	users        []models.User
	markers      map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markers: make(map[string]struct{})}
}

func (s *MemoryStore) InsertCertificate(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.certificates {
		if c.ID == cert.ID || c.VerificationID == cert.VerificationID {
			return fmt.Errorf("%w: certificate identifier already used", ErrDuplicate)
		}
	}
	s.certificates = append(s.certificates, *cert)
	return nil
}

func (s *MemoryStore) FindCertificate(_ context.Context, field, value string) (*models.Certificate, error) {
	if !isLookupField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.certificates {
		if (field == FieldID && c.ID == value) || (field == FieldVerificationID && c.VerificationID == value) {
			found := c
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListCertificates(_ context.Context, limit int64) ([]models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := int64(len(s.certificates))
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Certificate, n)
	copy(out, s.certificates[:n])
	return out, nil
}

func (s *MemoryStore) InsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.ID == user.ID {
			return fmt.Errorf("%w: username %q", ErrDuplicate, user.Username)
		}
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) ClaimMarker(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[name]; ok {
		return fmt.Errorf("%w: marker %q", ErrDuplicate, name)
	}
	s.markers[name] = struct{}{}
	return nil
}

func (s *MemoryStore) ReleaseMarker(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, name)
	return nil
}

func (s *MemoryStore) EnsureIndexes(context.Context) error { return nil }
func (s *MemoryStore) Ping(context.Context) error          { return nil }
func (s *MemoryStore) Close(context.Context) error         { return nil }
