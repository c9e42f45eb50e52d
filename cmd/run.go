/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/iorun"
	"github.com/spf13/cobra"
)

// getRunCmd returns the run command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Process indicator sources and export scores",
		Long: `Run the CRBA pipeline over already downloaded raw sources.

This command:
  1. Reads country reference tables from the input directory
  2. Reads sources.yaml and columns.yaml from the config directory
  3. Processes sources concurrently: mapping, latest observation,
     country reconciliation, encoding and normalization
  4. Aggregates scores to issue, index and overall levels
  5. Writes results to <output_dir>/<run_id>

A failing source is reported and skipped, the run goes on with the
rest. The run fails only when all selected sources fail.

Sources are configured in: ~/.config/crba/sources.yaml

Examples:
  # Process all sources
  crba run

  # Process selected sources and ranges
  crba run -s S-1,S-12
  crba run -s S-180..S-208

  # Change the processing year and export formats
  crba run -y 2023 -f csv,sqlite,postgres`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRun(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	runCmd.Flags().StringSliceP(
		"source-ids", "s", []string{},
		"source IDs or ranges to process (empty = all)",
	)
	runCmd.Flags().IntP("year", "y", 0, "processing year")
	runCmd.Flags().StringP("input-dir", "i", "",
		"directory with raw files and reference tables")
	runCmd.Flags().StringP("output-dir", "o", "",
		"directory for run results")
	runCmd.Flags().StringSliceP("formats", "f", []string{},
		"export formats: csv, sqlite, postgres")
	runCmd.Flags().IntP("jobs", "j", 0,
		"number of sources processed concurrently")

	return runCmd
}

func runRun(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	runOpts := flagOptions(cmd,
		sourceIDsFlag,
		yearFlag,
		inputDirFlag,
		outputDirFlag,
		formatsFlag,
		jobsFlag,
	)
	if len(runOpts) > 0 {
		cfg.Update(runOpts)
	}

	_, err := iorun.New(cfg).Run(ctx)
	return err
}
