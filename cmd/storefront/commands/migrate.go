package commands

import (
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Normalize legacy data",
	Long: `Move legacy "e-commerce-*" keys to their current names and rewrite stored
orders, users and credentials in the current shape. Plaintext passwords
left by older versions are replaced with bcrypt hashes. Safe to run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(configPath)
		app, err := openApp(loader)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		report, err := app.StorageService.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "moved keys: %v\n", report.MovedKeys)
		fmt.Fprintf(out, "dropped keys: %v\n", report.DroppedKeys)
		fmt.Fprintf(out, "orders written: %d\n", report.OrdersWritten)
		fmt.Fprintf(out, "users written: %d\n", report.UsersWritten)
		fmt.Fprintf(out, "credentials written: %d (%d passwords hashed)\n", report.CredentialsWritten, report.PasswordsHashed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
