package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Parkside-Labs/evalgate/internal/config"
	"github.com/Parkside-Labs/evalgate/internal/logger"
	"github.com/Parkside-Labs/evalgate/internal/registry"
	"github.com/Parkside-Labs/evalgate/internal/runner"
	"github.com/Parkside-Labs/evalgate/internal/server"
)

type serveFlags struct {
	port int
}

// newServeCommand creates the serve subcommand
func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evalgate HTTP server",
		Long:  `Start an HTTP server that serves the run-submission form and a JSON API for submitting, previewing, and cancelling evaluation runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), flags)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to run the HTTP server on (default from EVALGATE_HTTP_PORT)")

	return cmd
}

// runServer starts the HTTP server and tears it down on SIGINT/SIGTERM.
func runServer(ctx context.Context, flags *serveFlags) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.port > 0 {
		cfg.Server.Port = flags.port
	}

	// Refuse to serve at all without the engine's credential; every run
	// submission would fail anyway.
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	reg := registry.New(cfg.MaxConcurrent)
	r := runner.New(cfg, reg)
	srv := server.NewServer(cfg, r)

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting evalgate HTTP server on port %d", cfg.Server.Port)
		serverErr <- srv.Start(ctx)
	}()

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
		cancel()
		reg.Shutdown()
		err = <-serverErr
	case err = <-serverErr:
		reg.Shutdown()
	}

	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
