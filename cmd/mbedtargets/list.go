package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/armmbed/mbedtargets/internal/server"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newListCmd lists every target in provider order.
func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all known boards",
		Long: `List every board in the board database, in database order.

Example:
  mbedtargets list
  mbedtargets list --offline --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := opts.newTargets()
			if err != nil {
				return err
			}
			defer func() { _ = targets.Close() }()

			out := cmd.OutOrStdout()
			if asJSON {
				views := []server.TargetView{}
				for target, err := range targets.All(cmd.Context()) {
					if err != nil {
						return fmt.Errorf("failed to list targets: %w", err)
					}
					views = append(views, server.NewTargetView(target))
				}
				return writeJSON(out, views)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT CODE\tBOARD TYPE\tNAME\tMBED OS SUPPORT")
			count := 0
			for target, err := range targets.All(cmd.Context()) {
				if err != nil {
					return fmt.Errorf("failed to list targets: %w", err)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					target.ProductCode(),
					target.BoardType(),
					target.PlatformName(),
					strings.Join(target.MbedOSSupport(), ", "),
				)
				count++
			}
			opts.logger.Info("listed targets", "count", count)
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print targets as a JSON array")
	return cmd
}
