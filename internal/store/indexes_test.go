package store

import (
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lateIndexes fails EnsureIndexes until the database "comes back".
type lateIndexes struct {
	*MemoryStore
	failures int
	calls    int
}

func (s *lateIndexes) EnsureIndexes(context.Context) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("server selection timeout")
	}
	return nil
}

func TestIndexGuard_RetriesUntilIndexesExist(t *testing.T) {
	ctx := context.Background()
	inner := &lateIndexes{MemoryStore: NewMemoryStore(), failures: 2}
	g := NewIndexGuard(inner)

	// startup attempt
	require.Error(t, g.EnsureIndexes(ctx))
	assert.False(t, g.Ensured())

	err := g.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable, "not ready before the indexes exist")

	user := &models.User{ID: "u-1", Username: "alice"}
	require.NoError(t, g.Ping(ctx))
	assert.True(t, g.Ensured())
	require.NoError(t, g.InsertUser(ctx, user))

	// no further attempts once ensured
	require.NoError(t, g.InsertCertificate(ctx, testCertificate("id-1", "vid-1")))
	require.NoError(t, g.ClaimMarker(ctx, MarkerAdminBootstrap))
	assert.Equal(t, 3, inner.calls)
}

func TestIndexGuard_BlocksWritesWithoutIndexes(t *testing.T) {
	ctx := context.Background()
	inner := &lateIndexes{MemoryStore: NewMemoryStore(), failures: 10}
	g := NewIndexGuard(inner)

	assert.ErrorIs(t, g.InsertUser(ctx, &models.User{ID: "u-1", Username: "alice"}), ErrUnavailable)
	assert.ErrorIs(t, g.InsertCertificate(ctx, testCertificate("id-1", "vid-1")), ErrUnavailable)
	assert.ErrorIs(t, g.ClaimMarker(ctx, MarkerAdminBootstrap), ErrUnavailable)

	n, err := g.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = g.FindCertificate(ctx, FieldID, "id-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
