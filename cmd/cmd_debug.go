// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jcodagnone/geotowns/towns"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugParseCmd = &cobra.Command{
	Use:   "parse [input.csv]",
	Short: "Shows how an input file is read, without calling the Geocoding API",
	Long: `Reads a town list from the given file or from stdin and prints, for every
row, its line number, town, region and the address sent to the Geocoding API.
Skipped rows are reported on stderr. No request is made, so no quota is used.

$ echo 'New York,USA' | geotowns debug parse
1	New York	USA	New+York%2C+USA
	`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = os.Stdin

		if len(args) == 1 {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("%w: %w", towns.ErrInputNotFound, err)
			}
			defer f.Close()

			input = f
		} else if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter towns as 'town,region', one per line…")
		}

		report, err := towns.ParseLocations(input)
		if err != nil {
			return err
		}

		return printParseReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
	},
}

func printParseReport(out, errOut io.Writer, report *towns.ReadReport) error {
	for _, req := range report.Requests {
		if _, err := fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", req.Line, req.Name, req.Region, req.EncodedQuery); err != nil {
			return err
		}
	}

	for _, s := range report.Skipped {
		fmt.Fprintf(errOut, "line %d skipped: %s\n", s.Line, s.Reason)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugParseCmd)
}
