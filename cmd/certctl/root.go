package main

import (
	"context"
	"log/slog"

	"github.com/AnshRaj112/certify-backend/internal/app"
	"github.com/AnshRaj112/certify-backend/internal/config"
	"github.com/AnshRaj112/certify-backend/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// newApp opens the configured store. Tests replace it with an in-memory app.
var newApp = func(ctx context.Context) (*app.App, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
	return app.New(ctx, cfg, logger)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "certctl",
	Short: "Operator tools for the certificate backend",
	Long: `Operator tools for the certificate backend. Connection settings are
read from the environment (and .env) exactly as the server reads them.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// withApp runs fn with a wired App and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil {
			a.Logger.Warn("close", slog.Any("error", cerr))
		}
	}()
	return fn(ctx, a)
}
