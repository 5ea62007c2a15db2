package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCmd validates a config file without querying the database.
func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		Long: `Validate an mbedtargets configuration file without querying the database.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  mbedtargets validate -c mbedtargets.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile == "" {
				return errors.New(`required flag(s) "config" not set`)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			auth := "from environment"
			if cfg.Database.AuthToken != nil {
				auth = "none"
				if *cfg.Database.AuthToken != "" {
					auth = "set"
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config is valid!\n")
			fmt.Fprintf(out, "  Source:   %s\n", cfg.Source())
			fmt.Fprintf(out, "  Timeout:  %s\n", cfg.Database.Timeout.Duration())
			fmt.Fprintf(out, "  Token:    %s\n", auth)
			fmt.Fprintf(out, "  Headers:  %d\n", len(cfg.Database.Headers))
			return nil
		},
	}
}
