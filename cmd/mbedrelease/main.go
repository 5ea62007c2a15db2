// Package main is the entry point for the mbedrelease CLI.
//
// mbedrelease is run by CI to tag a version of the module and publish it to
// the Go module proxy.
//
// Usage:
//
//	mbedrelease -t development --version 1.2.0        # Report the version only
//	mbedrelease -t beta --version 1.3.0-beta.1        # Tag and publish
//	mbedrelease -t release --version 1.3.0 --dry-run  # Rehearse a full release
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/armmbed/mbedtargets/internal/cli"
	"github.com/armmbed/mbedtargets/internal/release"
)

type releaseOptions struct {
	releaseType string
	version     string
	module      string
	repository  string
	proxyURL    string
	dryRun      bool
	verbosity   int
}

// newRootCmd builds the command. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	opts := &releaseOptions{}

	cmd := &cobra.Command{
		Use:   "mbedrelease",
		Short: "Tag and publish a release",
		Long: `Tag and publish a release of the module.

Release types:
  development - report the version only
  beta        - tag the current commit as v<version> and publish it
  release     - commit the changelog, then tag and publish

The GitHub token is read from GIT_TOKEN.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.releaseType, "release-type", "t", "",
		"type of release to perform ("+strings.Join(release.Modes(), ", ")+")")
	cmd.Flags().StringVar(&opts.version, "version", "", "version to release, without the leading v (e.g. 1.2.0)")
	cmd.Flags().StringVar(&opts.module, "module", "", "module path to publish (default: read from go.mod)")
	cmd.Flags().StringVar(&opts.repository, "repository", "", "GitHub repository as owner/name used for the push remote")
	cmd.Flags().StringVar(&opts.proxyURL, "proxy", release.DefaultProxyURL, "Go module proxy URL")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log git commands instead of running them")
	cmd.Flags().CountVarP(&opts.verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")

	_ = cmd.MarkFlagRequired("release-type")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func runRelease(cmd *cobra.Command, opts *releaseOptions) error {
	logger := cli.NewLogger(cmd.ErrOrStderr(), opts.verbosity, false)

	mode, err := release.ParseMode(opts.releaseType)
	if err != nil {
		return err
	}
	if err := release.ValidateVersion(opts.version); err != nil {
		return err
	}

	module := opts.module
	if module == "" && mode != release.Development {
		if module, err = release.ModulePath("."); err != nil {
			return fmt.Errorf("--module not given: %w", err)
		}
	}

	return release.Run(cmd.Context(), release.Config{
		Mode:       mode,
		Version:    opts.version,
		Module:     module,
		Repository: opts.repository,
		ProxyURL:   opts.proxyURL,
		DryRun:     opts.dryRun,
		Logger:     logger,
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("release failed", "error", err)
		stop()
		os.Exit(1)
	}
}
