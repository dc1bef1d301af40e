package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradedeck-console/internal/api"
	"tradedeck-console/internal/config"
	"tradedeck-console/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Client *api.Client
	Store  store.JournalStore
}

// NewRootCmd creates the root command for the console.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Client: api.NewClient(api.ClientConfig{
			BaseURL:   cfg.API.BaseURL,
			AuthToken: cfg.API.AuthToken,
			Timeout:   cfg.API.Timeout,
		}, logger),
	}

	if js, err := store.NewSQLiteStore(cfg.Store.Path); err != nil {
		logger.Warn().Err(err).Msg("Journal store unavailable, running without local audit")
	} else {
		app.Store = js
	}

	rootCmd := &cobra.Command{
		Use:     "tradedeck-console",
		Short:   "Operator console for the tradedeck trading-bot fleet",
		Long:    "Live strategy health, risk exposure and order flow monitoring,\nwith confirmed control commands (pause/resume/stop/start, emergency kill).",
		Version: Version,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				if err := app.Store.Close(); err != nil {
					logger.Warn().Err(err).Msg("Failed to close journal store")
				}
			}
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newConsoleCmd(app))
	addViewCommands(rootCmd, app)
	addControlCommands(rootCmd, app)
	rootCmd.AddCommand(newAuditCmd(app))

	return rootCmd
}

// requireToken fails early for commands that need the backend.
func requireToken(app *App) error {
	if app.Config.API.AuthToken == "" {
		return fmt.Errorf("api.auth_token not configured (set TRADEDECK_API_AUTH_TOKEN or edit %s)", config.ConfigDir())
	}
	return nil
}
