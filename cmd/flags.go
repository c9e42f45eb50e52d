package cmd

import (
	"fmt"
	"os"

	crba "github.com/m-g-d-c/crba-etl/pkg"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/spf13/cobra"
)

// funcFlag converts a flag, if it was set, into config options.
type funcFlag func(cmd *cobra.Command) []config.Option

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", crba.Version, crba.Build)
		os.Exit(0)
	}
}

func sourceIDsFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("source-ids") {
		return nil
	}
	ids, _ := cmd.Flags().GetStringSlice("source-ids")
	return []config.Option{config.OptRunSourceIDs(ids)}
}

func yearFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("year") {
		return nil
	}
	year, _ := cmd.Flags().GetInt("year")
	return []config.Option{config.OptRunYear(year)}
}

func inputDirFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("input-dir") {
		return nil
	}
	dir, _ := cmd.Flags().GetString("input-dir")
	return []config.Option{config.OptInputDir(dir)}
}

func outputDirFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("output-dir") {
		return nil
	}
	dir, _ := cmd.Flags().GetString("output-dir")
	return []config.Option{config.OptOutputDir(dir)}
}

func formatsFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("formats") {
		return nil
	}
	ff, _ := cmd.Flags().GetStringSlice("formats")
	return []config.Option{config.OptExportFormats(ff)}
}

func jobsFlag(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("jobs") {
		return nil
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	return []config.Option{config.OptJobsNumber(jobs)}
}

// flagOptions collects options of all flags that were set.
func flagOptions(cmd *cobra.Command, flags ...funcFlag) []config.Option {
	var res []config.Option
	for _, f := range flags {
		res = append(res, f(cmd)...)
	}
	return res
}
