package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra/internal/cli"
	"github.com/aretw0/souqra/internal/config"
	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "souqra",
	Short: "Souqra turns a product brief into a launch kit",
	Long: `Souqra runs a four-step marketing pipeline (research, keyword strategy,
creative drafts, campaign plan) and pauses for you to pick a persona and a
creative draft along the way. Sessions are durable and can be resumed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./souqra.yaml if present)")
	rootCmd.PersistentFlags().String("dir", "", "Session directory for the file store (overrides store.dir)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log lifecycle events to stderr")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Dir = dir
	}
	return cfg, nil
}

// setup loads the configuration and its logger. quiet discards logs unless --debug is set,
// keeping interactive output clean.
func setup(cmd *cobra.Command, quiet bool) (config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	if quiet && !debug {
		return cfg, logging.NewNop(), nil
	}
	return cfg, cli.NewLogger(cfg.Log, debug), nil
}

// openApp builds the controller for commands that only read or manage sessions.
func openApp(cmd *cobra.Command, quiet bool, hooks ...domain.LifecycleHooks) (*cli.App, error) {
	cfg, logger, err := setup(cmd, quiet)
	if err != nil {
		return nil, err
	}
	return cli.Build(cmd.Context(), cfg, logger, hooks...)
}
