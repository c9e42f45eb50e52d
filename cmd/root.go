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
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/iofs"
	"github.com/m-g-d-c/crba-etl/internal/iologger"
	crba "github.com/m-g-d-c/crba-etl/pkg"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", crba.Version, crba.Build),
		Use:     "crba",
		Short:   "crba builds the Children's Rights and Business Atlas scores",
		Long: `crba is an ETL pipeline for human-rights indicators of the
Children's Rights and Business Atlas.

It reads already downloaded raw sources, maps their columns to a
common SDMX-like schema, keeps the latest observation per country,
reconciles country names and codes with the master list, encodes
categorical values, scales every indicator to a 0-10 score and
aggregates the scores to issue, index and overall levels.

Main commands:
  - run: process sources and export results
  - create: create export tables in PostgreSQL
  - migrate: update export tables in PostgreSQL

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (CRBA_*)
  3. Config file (~/.config/crba/config.yaml)
  4. Built-in defaults

Environment variables use underscores for nesting, for example
CRBA_RUN_YEAR, CRBA_EXPORT_FORMATS, CRBA_DATABASE_HOST.`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "crba version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for crba")

	rootCmd.AddCommand(getRunCmd())
	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getMigrateCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	ensure := []func(string) error{
		iofs.EnsureConfigFile,
		iofs.EnsureSourcesFile,
		iofs.EnsureColumnsFile,
	}
	for _, f := range ensure {
		if err = f(homeDir); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", config.ConfigFilePath(homeDir))

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log)
}

func runRoot(cmd *cobra.Command, _ []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("CRBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// General configuration
	v.BindEnv("input_dir", "CRBA_INPUT_DIR")
	v.BindEnv("output_dir", "CRBA_OUTPUT_DIR")
	v.BindEnv("jobs_number", "CRBA_JOBS_NUMBER")

	// Run configuration
	v.BindEnv("run.year", "CRBA_RUN_YEAR")
	v.BindEnv("run.whisker_factor", "CRBA_RUN_WHISKER_FACTOR")
	v.BindEnv("run.max_score", "CRBA_RUN_MAX_SCORE")
	v.BindEnv("run.recency_years", "CRBA_RUN_RECENCY_YEARS")
	v.BindEnv("run.duplicate_tolerant", "CRBA_RUN_DUPLICATE_TOLERANT")

	// Reference tables
	v.BindEnv("reference.countries_file", "CRBA_REFERENCE_COUNTRIES_FILE")
	v.BindEnv("reference.variants_file", "CRBA_REFERENCE_VARIANTS_FILE")

	// Export configuration
	v.BindEnv("export.formats", "CRBA_EXPORT_FORMATS")

	// Database configuration
	v.BindEnv("database.host", "CRBA_DATABASE_HOST")
	v.BindEnv("database.port", "CRBA_DATABASE_PORT")
	v.BindEnv("database.user", "CRBA_DATABASE_USER")
	v.BindEnv("database.password", "CRBA_DATABASE_PASSWORD")
	v.BindEnv("database.database", "CRBA_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "CRBA_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "CRBA_DATABASE_BATCH_SIZE")

	// Log configuration
	v.BindEnv("log.level", "CRBA_LOG_LEVEL")
	v.BindEnv("log.format", "CRBA_LOG_FORMAT")
	v.BindEnv("log.destination", "CRBA_LOG_DESTINATION")

	v.AutomaticEnv()
}
