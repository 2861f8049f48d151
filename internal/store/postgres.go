package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresStore is the relational backend, selected with STORE_DRIVER=postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func pgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

const certificateColumns = `id, verification_id, intern_name, role, duration, mode,
	start_date, end_date, created_at, issued_by, issued_by_title, company`

func scanCertificate(row interface{ Scan(...any) error }) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.VerificationID, &c.InternName, &c.Role, &c.Duration, &c.Mode,
		&c.StartDate, &c.EndDate, &c.CreatedAt, &c.IssuedBy, &c.IssuedByTitle, &c.Company)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) InsertCertificate(ctx context.Context, c *models.Certificate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.VerificationID, c.InternName, c.Role, c.Duration, c.Mode,
		c.StartDate, c.EndDate, c.CreatedAt, c.IssuedBy, c.IssuedByTitle, c.Company)
	return pgErr(err)
}

func (s *PostgresStore) FindCertificate(ctx context.Context, field, value string) (*models.Certificate, error) {
	// field is interpolated, so only the two known column names are accepted.
	if !isLookupField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE `+field+` = $1`, value)
	c, err := scanCertificate(row)
	if err != nil {
		return nil, pgErr(err)
	}
	return c, nil
}

func (s *PostgresStore) ListCertificates(ctx context.Context, limit int64) ([]models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates ORDER BY seq`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	certs := make([]models.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, pgErr(err)
		}
		certs = append(certs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}
	return certs, nil
}

func (s *PostgresStore) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.PasswordHash, u.FullName, u.CreatedAt, u.IsActive)
	return pgErr(err)
}

func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, full_name, created_at, is_active
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.IsActive)
	if err != nil {
		return nil, pgErr(err)
	}
	return &u, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, pgErr(err)
	}
	return n, nil
}

func (s *PostgresStore) ClaimMarker(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO system_markers (name) VALUES ($1)`, name)
	return pgErr(err)
}

func (s *PostgresStore) ReleaseMarker(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM system_markers WHERE name = $1`, name)
	return pgErr(err)
}

// EnsureIndexes creates all necessary tables if they don't exist.
func (s *PostgresStore) EnsureIndexes(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS certificates (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			verification_id TEXT NOT NULL UNIQUE,
			intern_name TEXT NOT NULL,
			role TEXT NOT NULL,
			duration TEXT NOT NULL,
			mode TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			issued_by TEXT NOT NULL,
			issued_by_title TEXT NOT NULL,
			company TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// One row per one-time operation (admin bootstrap)
		`CREATE TABLE IF NOT EXISTS system_markers (
			name TEXT PRIMARY KEY,
			claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return pgErr(err)
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return pgErr(s.db.PingContext(ctx))
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}
