package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dori/leadboard/internal/config"
	"github.com/dori/leadboard/internal/db"
	"github.com/dori/leadboard/internal/logging"
	"github.com/dori/leadboard/internal/model"
)

var (
	configPath string
	verbose    bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "leadboard",
		Short: "leadboard - Kanban CRM for coworking leads",
		Long: `leadboard keeps boards, columns and lead cards in a local document store.

Run without arguments to open the board in the terminal, or use the
subcommands to add leads, serve the HTTP intake API and manage revisions.`,
		RunE:          runTUI, // Default action is the TUI
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/leadboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(leadCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	appVersion = version
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// stderrLogger is the logger for serve and one-shot commands
func stderrLogger(cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level, os.Stderr)
}

// readDocument loads the stored document without taking the instance lock.
// Read-only commands use it so they work while the TUI is open.
func readDocument(ctx context.Context, cfg *config.Config) (*model.Document, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	return database.Load(ctx, cfg.DocumentKey)
}
