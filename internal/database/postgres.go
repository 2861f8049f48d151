package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens the pool and checks it answers. Tables are created
// by the store's EnsureIndexes.
func ConnectPostgres(ctx context.Context, postgresURI string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	logger.Info("✅ Connected to PostgreSQL", slog.String("uri", MaskURI(postgresURI)))
	return db, nil
}
