package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AnshRaj112/certify-backend/internal/app"
	"github.com/AnshRaj112/certify-backend/internal/services"
	"github.com/AnshRaj112/certify-backend/pkg/utils"
	"github.com/spf13/cobra"
)

// bootstrapAdminCmd creates the first admin account.
var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create the initial admin account on an empty store",
	Long: `Creates the admin account from ADMIN_USERNAME / ADMIN_PASSWORD /
ADMIN_FULL_NAME. Fails if any account already exists. The password is
printed once; store it somewhere safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Accounts.BootstrapAdmin(ctx)
			if errors.Is(err, services.ErrConflict) {
				return errors.New("admin user already exists")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin user created successfully\nusername: %s\npassword: %s\n",
				res.User.Username, res.Password)
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <verification_id>",
	Short: "Look up a certificate by its verification id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Certificates.VerifyByVerificationID(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.IsValid {
				fmt.Fprintf(out, "INVALID  %s: %s\n", res.VerificationID, res.Message)
				return nil
			}
			c := res.CertificateData
			fmt.Fprintf(out, "VALID    %s: %s\n", res.VerificationID, res.Message)
			fmt.Fprintf(out, "  intern:   %s\n  role:     %s (%s, %s)\n  period:   %s to %s\n  issued:   %s by %s, %s, %s\n",
				c.InternName, c.Role, c.Duration, c.Mode, c.StartDate, c.EndDate,
				c.CreatedAt.Format("2006-01-02"), c.IssuedBy, c.IssuedByTitle, c.Company)
			return nil
		})
	},
}

var qrOut string

var qrCmd = &cobra.Command{
	Use:   "qr <verification_id>",
	Short: "Render the verification QR code for a certificate",
	Long: `Renders the verification QR code for an existing certificate. With
--out the PNG is written to a file; otherwise the data URI is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			qr, err := a.Certificates.GenerateQR(ctx, args[0])
			if errors.Is(err, services.ErrNotFound) {
				return fmt.Errorf("certificate %q not found", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if qrOut == "" {
				fmt.Fprintln(out, qr.QRCode)
				return nil
			}
			png, err := utils.DecodePNGDataURI(qr.QRCode)
			if err != nil {
				return err
			}
			if err := os.WriteFile(qrOut, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", qrOut, err)
			}
			fmt.Fprintf(out, "wrote %s (%s)\n", qrOut, qr.VerificationURL)
			return nil
		})
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create unique indexes (Mongo) or tables (Postgres)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Store.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(bootstrapAdminCmd, verifyCmd, qrCmd, ensureIndexesCmd)

	qrCmd.Flags().StringVarP(&qrOut, "out", "o", "", "write the PNG to this file instead of printing the data URI")
}
