// Package app wires configuration, storage and services together. It owns
// every long-lived connection and releases them in Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AnshRaj112/certify-backend/internal/config"
	"github.com/AnshRaj112/certify-backend/internal/database"
	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/AnshRaj112/certify-backend/internal/services"
	"github.com/AnshRaj112/certify-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Store        store.Store
	Certificates *services.CertificateService
	Accounts     *services.AccountService
	Redis        *redis.Client // nil unless REDIS_URI is set
}

// New opens the configured store. A Mongo deployment that cannot be reached
// at startup does not stop the process: requests answer 503 until it is back.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := NewWithStore(cfg, s, logger)

	if cfg.RedisURI != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
		if err != nil {
			logger.Warn("⚠️  Redis unavailable, shared rate limiting disabled", slog.Any("error", err))
		} else {
			a.Redis = client
		}
	}
	return a, nil
}

// NewWithStore builds the services over an already opened store.
func NewWithStore(cfg *config.Config, s store.Store, logger *slog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
		Store:  s,
		Certificates: services.NewCertificateService(s, services.CertificateOptions{
			Issuer: models.Issuer{
				Name:    cfg.IssuerName,
				Title:   cfg.IssuerTitle,
				Company: cfg.IssuerCompany,
			},
			VerifyBaseURL: cfg.VerifyBaseURL,
			ListLimit:     cfg.ListLimit,
			Logger:        logger,
		}),
		Accounts: services.NewAccountService(s, services.AdminCredentials{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			FullName: cfg.AdminFullName,
		}, logger),
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, database.MongoOptions{
			URI:                    cfg.MongoURI,
			ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
			TLSInsecure:            cfg.MongoTLSInsecure,
		}, logger)
		if err != nil {
			logger.Error("❌ MongoDB client could not be created, running without a database", slog.Any("error", err))
			return store.NewMongoStore(nil), nil
		}

		// Indexes are retried on later writes and readiness checks when
		// Mongo is not reachable yet.
		s := store.NewIndexGuard(store.NewMongoStore(client.Database(cfg.DatabaseName)))
		if err := database.PingMongo(ctx, client, cfg.MongoServerSelectionTimeout); err != nil {
			logger.Warn("⚠️  MongoDB not reachable yet", slog.Any("error", err))
			return s, nil
		}
		logger.Info("✅ Connected to MongoDB", slog.String("database", cfg.DatabaseName))

		if err := s.EnsureIndexes(ctx); err != nil {
			logger.Warn("⚠️  failed to ensure MongoDB indexes, will retry", slog.Any("error", err))
		} else {
			logger.Info("✅ MongoDB indexes ensured")
		}
		return s, nil

	case config.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logger)
		if err != nil {
			return nil, err
		}
		s := store.NewPostgresStore(db)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init postgres tables: %w", err)
		}
		return s, nil

	case config.DriverMemory:
		logger.Warn("⚠️  using in-memory store; records are lost on restart")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// Close releases the store and Redis connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close(ctx))
	}
	return errors.Join(errs...)
}
