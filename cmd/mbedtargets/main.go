// Package main is the entry point for the mbedtargets CLI.
//
// The CLI looks up boards in the Mbed online board database, or in the
// snapshot compiled into the binary when run with --offline.
//
// Usage:
//
//	mbedtargets list                        # List every known board
//	mbedtargets show 0240                   # Show the board with product code 0240
//	mbedtargets show --board-type K64F      # Show a board by board type
//	mbedtargets validate -c mbedtargets.yaml # Validate configuration
//	mbedtargets serve --port 8080           # Serve lookups over HTTP
//	mbedtargets version                     # Show version info
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/armmbed/mbedtargets"
	"github.com/armmbed/mbedtargets/config"
	"github.com/armmbed/mbedtargets/internal/cli"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	offline    bool
	verbosity  int
	jsonLogs   bool

	logger *slog.Logger
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mbedtargets",
		Short: "Look up Mbed boards by product code or board type",
		Long: `mbedtargets looks up development boards in the Mbed online board database.

The database token is read from MBED_API_AUTH_TOKEN. A .env file in the
working directory is loaded first if present.

Example config:
  database:
    url: https://os.mbed.com/api/v4/targets/all
    auth_token: ${MBED_API_AUTH_TOKEN:-}
    timeout: 10s`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = cli.NewLogger(cmd.ErrOrStderr(), opts.verbosity, opts.jsonLogs)
		},
		// No Run/RunE means this just shows help when called without subcommands
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "use the board database snapshot compiled into the binary")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "enable JSON formatted logs")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newValidateCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig returns the config file's settings, or the defaults when no
// file is given, with --offline applied on top.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if o.offline {
		cfg.Offline = true
		cfg.SnapshotFile = ""
	}
	return cfg, nil
}

// newTargets builds the target collection the subcommands query.
func (o *rootOptions) newTargets() (*mbedtargets.Targets, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("using board database", "source", cfg.Source())

	targetOpts := append(config.BuildOptions(cfg), mbedtargets.WithLogger(logger))
	return mbedtargets.New(targetOpts...)
}

// loadDotEnv loads .env from the working directory. A missing file is not
// an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// Cobra already prints the error, just exit with code 1
		stop()
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newVersionCmd prints version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this mbedtargets binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mbedtargets %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
