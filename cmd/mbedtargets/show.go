package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/armmbed/mbedtargets"
	"github.com/armmbed/mbedtargets/internal/server"
)

// newShowCmd prints a single target found by product code or board type.
func newShowCmd(opts *rootOptions) *cobra.Command {
	var (
		boardType string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "show [product-code]",
		Short: "Show one board",
		Long: `Show the board with the given product code, or with --board-type the
first board of that type (case-insensitive).

The product code is the four character prefix of the unique ID reported by
a connected Mbed device.

Example:
  mbedtargets show 0240
  mbedtargets show --board-type nucleo_f401re`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (boardType != "") {
				return errors.New("specify either a product code or --board-type")
			}

			targets, err := opts.newTargets()
			if err != nil {
				return err
			}
			defer func() { _ = targets.Close() }()

			var target mbedtargets.Target
			if boardType != "" {
				target, err = targets.ByBoardType(cmd.Context(), boardType)
			} else {
				target, err = targets.ByProductCode(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, server.NewTargetView(target))
			}

			fmt.Fprintf(out, "Board type:      %s\n", target.BoardType())
			fmt.Fprintf(out, "Platform name:   %s\n", target.PlatformName())
			fmt.Fprintf(out, "Product code:    %s\n", target.ProductCode())
			fmt.Fprintf(out, "Mbed OS support: %s\n", strings.Join(target.MbedOSSupport(), ", "))
			fmt.Fprintf(out, "Mbed Enabled:    %s\n", strings.Join(target.MbedEnabled(), ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&boardType, "board-type", "", "look the board up by board type instead of product code")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the target as JSON")
	return cmd
}
