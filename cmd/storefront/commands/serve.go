package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Initialize missing collections and the admin account, normalize legacy data,
then serve /api/v1 until SIGINT or SIGTERM.

Changing LOG_LEVEL in the config file takes effect without restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newHandler(app *appcontext.ApplicationContext) http.Handler {
	server := api.NewServer(
		handler.NewCatalogHandler(app.CatalogService),
		handler.NewInventoryHandler(app.InventoryService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewAuthHandler(app.UserService),
		handler.NewSettingsHandler(app.SettingsService, app.DashboardService),
	)
	r := router.SetupRouter(server, app.UserService, app.Limiter, app.Logger)
	if err := router.LogRoutes(r, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("walk routes")
	}
	return r
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loader := config.NewLoader(configPath)
	app, err := openApp(loader)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Shutdown(); err != nil {
			app.Logger.Error().Err(err).Msg("application shutdown error")
		}
	}()

	if err := app.Bootstrap(ctx); err != nil {
		return err
	}

	loader.Watch(func(cf *config.Config, err error) {
		if err != nil {
			app.Logger.Warn().Err(err).Msg("config reload failed, keep previous config")
			return
		}
		level := logger.SetLevel(cf.LogLevel)
		app.Logger.Info().Str("level", level.String()).Msg("config reloaded")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           newHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	shutdownCompleted := make(chan struct{})
	go func() {
		defer close(shutdownCompleted)
		select {
		case <-sigChan:
			app.Logger.Info().Msg("received shutdown signal")
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	app.Logger.Info().Str("addr", srv.Addr).Str("driver", app.Cf.StoreDriver).Msg("server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownCompleted
	app.Logger.Info().Msg("closed completed")
	return nil
}
