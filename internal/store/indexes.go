package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/AnshRaj112/certify-backend/internal/models"
)

// IndexGuard wraps a Store whose indexes may not exist yet, typically a
// Mongo deployment that was unreachable at startup. Writes and Ping retry
// EnsureIndexes until it has succeeded once; until then they fail with
// ErrUnavailable so no record is written without its uniqueness constraints.
type IndexGuard struct {
	Store

	mu      sync.Mutex
	ensured bool
}

func NewIndexGuard(s Store) *IndexGuard {
	return &IndexGuard{Store: s}
}

// EnsureIndexes creates the indexes unless that already succeeded.
func (g *IndexGuard) EnsureIndexes(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ensured {
		return nil
	}
	if err := g.Store.EnsureIndexes(ctx); err != nil {
		return err
	}
	g.ensured = true
	return nil
}

// Ensured reports whether the indexes are known to exist.
func (g *IndexGuard) Ensured() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensured
}

func (g *IndexGuard) ready(ctx context.Context) error {
	if err := g.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("%w: ensure indexes: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping fails until the indexes exist, keeping readiness at 503.
func (g *IndexGuard) Ping(ctx context.Context) error {
	if err := g.Store.Ping(ctx); err != nil {
		return err
	}
	return g.ready(ctx)
}

func (g *IndexGuard) InsertCertificate(ctx context.Context, cert *models.Certificate) error {
	if err := g.ready(ctx); err != nil {
		return err
	}
	return g.Store.InsertCertificate(ctx, cert)
}

func (g *IndexGuard) InsertUser(ctx context.Context, user *models.User) error {
	if err := g.ready(ctx); err != nil {
		return err
	}
	return g.Store.InsertUser(ctx, user)
}

func (g *IndexGuard) ClaimMarker(ctx context.Context, name string) error {
	if err := g.ready(ctx); err != nil {
		return err
	}
	return g.Store.ClaimMarker(ctx, name)
}
