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

// AdminCredentials are the fixed credentials created by BootstrapAdmin.
type AdminCredentials struct {
	Username string
	Password string
	FullName string
}

// BootstrapResult carries the admin password back to the operator. It is
// the only time the plaintext is ever available.
type BootstrapResult struct {
	User     models.User
	Password string
}

type AccountService struct {
	store store.AccountStore
	admin AdminCredentials
	log   *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewAccountService(s store.AccountStore, admin AdminCredentials, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		store: s,
		admin: admin,
		log:   logger.With("component", "accounts"),
		now:   timestamp,
		newID: utils.NewIdentifier,
	}
}

// Register creates an active account. The returned user has no password hash.
func (s *AccountService) Register(ctx context.Context, username, password, fullName string) (*models.User, error) {
	// Pre-check for the common case; the unique index catches concurrent inserts.
	_, err := s.store.FindUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("register %q: %w", username, ErrConflict)
	case !errors.Is(err, store.ErrNotFound):
		return nil, translate("register", err)
	}

	user, err := s.insertUser(ctx, username, password, fullName)
	if err != nil {
		return nil, err
	}

	metrics.Registrations.Inc()
	s.log.InfoContext(ctx, "account registered", slog.String("username", username))
	public := user.Public()
	return &public, nil
}

// Login checks credentials. Unknown user, wrong password, unreadable hash
// and inactive account all return ErrUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.loginFailed(ctx, username, "unknown user")
		}
		return nil, translate("login", err)
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.WarnContext(ctx, "stored password hash unreadable",
			slog.String("username", username), slog.Any("error", err))
		return nil, s.loginFailed(ctx, username, "bad hash")
	}
	if !ok {
		return nil, s.loginFailed(ctx, username, "wrong password")
	}
	if !user.IsActive {
		return nil, s.loginFailed(ctx, username, "inactive")
	}

	public := user.Public()
	return &public, nil
}

func (s *AccountService) loginFailed(ctx context.Context, username, reason string) error {
	metrics.LoginFailures.Inc()
	s.log.DebugContext(ctx, "login rejected", slog.String("username", username), slog.String("reason", reason))
	return ErrUnauthorized
}

// BootstrapAdmin creates the first account from the configured admin
// credentials. It succeeds at most once per store.
func (s *AccountService) BootstrapAdmin(ctx context.Context) (*BootstrapResult, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, translate("bootstrap admin", err)
	}
	if n > 0 {
		return nil, fmt.Errorf("bootstrap admin: %w", ErrConflict)
	}

	if err := s.store.ClaimMarker(ctx, store.MarkerAdminBootstrap); err != nil {
		return nil, translate("bootstrap admin", err)
	}

	user, err := s.insertUser(ctx, s.admin.Username, s.admin.Password, s.admin.FullName)
	if err != nil {
		if rerr := s.store.ReleaseMarker(ctx, store.MarkerAdminBootstrap); rerr != nil {
			s.log.ErrorContext(ctx, "release bootstrap marker", slog.Any("error", rerr))
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "admin account bootstrapped", slog.String("username", user.Username))
	return &BootstrapResult{User: user.Public(), Password: s.admin.Password}, nil
}

func (s *AccountService) insertUser(ctx context.Context, username, password, fullName string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    s.now(),
		IsActive:     true,
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, translate("create account", err)
	}
	return user, nil
}
