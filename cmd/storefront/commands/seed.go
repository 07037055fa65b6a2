package commands

import (
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Seed flags
	seedFile string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories and products from a yaml file",
	Long: `Load categories with nested products from a yaml file in one transaction.
Categories with the same name are reused. Falls back to SEED_FILE when --file is empty.

Example:
  storefront seed --file seed.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(configPath)
		app, err := openApp(loader)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		path := seedFile
		if path == "" {
			path = app.Cf.SeedFile
		}
		if path == "" {
			return fmt.Errorf("no seed file, use --file or SEED_FILE")
		}

		ctx := cmd.Context()
		if err := app.Bootstrap(ctx); err != nil {
			return err
		}
		report, err := app.StorageService.SeedFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products\n", report.Categories, report.Products)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "yaml seed file")
	rootCmd.AddCommand(seedCmd)
}
