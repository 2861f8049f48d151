package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoOptions struct {
	URI                    string
	ServerSelectionTimeout time.Duration
	// TLSInsecure skips certificate validation when the URI enables TLS.
	// Never set it for production clusters.
	TLSInsecure bool
}

func mongoClientOptions(opts MongoOptions) *options.ClientOptions {
	clientOptions := options.Client().ApplyURI(opts.URI)
	if opts.ServerSelectionTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}
	if opts.TLSInsecure && clientOptions.TLSConfig != nil {
		clientOptions.TLSConfig.InsecureSkipVerify = true
	}
	return clientOptions
}

// ConnectMongo creates the client. The driver dials lazily, so an error here
// means the URI or options are unusable; reachability is checked with PingMongo.
func ConnectMongo(ctx context.Context, opts MongoOptions, logger *slog.Logger) (*mongo.Client, error) {
	if opts.TLSInsecure {
		logger.Warn("MongoDB TLS certificate validation disabled (MONGO_TLS_INSECURE)")
	}

	logger.Info("Attempting to connect to MongoDB...", slog.String("uri", MaskURI(opts.URI)))
	client, err := mongo.Connect(ctx, mongoClientOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// PingMongo checks the primary is reachable within timeout.
func PingMongo(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}

// MaskURI hides the password in a connection string before it is logged.
func MaskURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable uri>"
	}
	return u.Redacted()
}
