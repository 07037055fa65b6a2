package commands

import (
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "storefront data service",
	Long: `storefront keeps products, categories, inventory, orders, users and settings
in one key-value store and serves them over a JSON API.

Commands:
  serve    initialize the store, normalize legacy data and serve HTTP
  seed     load categories and products from a yaml file
  migrate  normalize legacy keys and order shapes`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path, env vars only when empty")
}

// openApp 讀設定並建立 ApplicationContext, 呼叫端負責 Shutdown
func openApp(loader *config.Loader) (*appcontext.ApplicationContext, error) {
	cf, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return appcontext.NewApplicationContext(cf)
}
