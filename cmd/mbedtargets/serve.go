package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/armmbed/mbedtargets/internal/server"
)

const (
	defaultPort     = 8080
	shutdownTimeout = 10 * time.Second
)

// newServeCmd serves board lookups over HTTP until interrupted.
func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve board lookups over HTTP",
		Long: `Serve the board database as a read-only JSON API.

Endpoints:
  GET /api/targets                  every board, in database order
  GET /api/targets/{product_code}   one board by product code
  GET /api/boards/{board_type}      one board by board type

Every request queries the configured database. The server runs until
interrupted (Ctrl+C) or receives SIGTERM.

Example:
  mbedtargets serve --port 8080
  mbedtargets serve --offline -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := opts.newTargets()
			if err != nil {
				return err
			}
			defer func() { _ = targets.Close() }()

			logger := opts.logger
			srv := server.NewServer(targets, port, logger)

			ctx := cmd.Context()
			done, err := srv.Start(ctx)
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("serving board lookups", "addr", srv.Addr().String())

			<-ctx.Done()
			select {
			case <-done:
				logger.Info("shutdown complete")
			case <-time.After(shutdownTimeout):
				logger.Warn("shutdown timed out",
					"timeout", shutdownTimeout.String(),
					"action", "forcing exit",
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	return cmd
}
