package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/itemdeck/internal/config"
	"github.com/syntrixbase/itemdeck/internal/logging"
	"github.com/syntrixbase/itemdeck/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const initTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "itemdeck",
		Short:         "Paginated, searchable item list with a persistent custom order and selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configDir, cmd.OutOrStdout())
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultConfigDir, "directory holding config.yml and config.local.yml")

	rootCmd.AddCommand(
		newServeCmd(&configDir),
		newVersionCmd(),
	)
	return rootCmd
}

func newServeCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configDir, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "itemdeck %s\n", version)
		},
	}
}

// runServe loads the configuration, runs the service until ctx is done and
// shuts it down within the configured timeout.
func runServe(ctx context.Context, configDir string, console io.Writer) error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return err
	}

	logger, err := logging.Initialize(cfg.Logging, logging.WithConsole(console))
	if err != nil {
		return err
	}
	defer logger.Close()

	mgr := services.NewManager(cfg, logger.Logger)

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	err = mgr.Init(initCtx)
	cancel()

	var runErr error
	if err != nil {
		runErr = fmt.Errorf("failed to initialize services: %w", err)
	} else {
		runErr = mgr.Start(ctx)
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, mgr.Shutdown(shutdownCtx))
}
