// Package config provides configuration management for crba.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - General: input_dir, output_dir, jobs_number
//   - Run: year, whisker_factor, max_score, recency_years, duplicate_tolerant
//   - Reference: countries_file, variants_file
//   - Export: formats
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - Run.SourceIDs (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use CRBA_ prefix with underscores for nesting:
//
//	CRBA_INPUT_DIR=./data_in
//	CRBA_RUN_YEAR=2024
//	CRBA_EXPORT_FORMATS="csv sqlite"
//	CRBA_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete crba configuration.
type Config struct {
	// InputDir contains raw source files and reference country lists.
	// Relative paths in sources.yaml are resolved against it.
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives one subdirectory per run, named by run ID.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Run contains scoring settings of a pipeline run.
	Run RunConfig `mapstructure:"run" yaml:"run"`

	// Reference points to country reference tables.
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference"`

	// Export determines which output formats are written.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	// Database contains PostgreSQL connection settings used by
	// the postgres export format.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of sources processed concurrently.
	// Default value is set accoring to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// RunConfig contains settings of a pipeline run.
type RunConfig struct {
	// Year is the processing year. It is used for missing time periods,
	// the recency cutoff and CRBA_RELEASE_YEAR. Zero means the current
	// calendar year.
	Year int `mapstructure:"year" yaml:"year"`

	// WhiskerFactor is the IQR multiplier for outlier bounds.
	WhiskerFactor float64 `mapstructure:"whisker_factor" yaml:"whisker_factor"`

	// MaxScore is the upper bound of normalized scores.
	MaxScore float64 `mapstructure:"max_score" yaml:"max_score"`

	// RecencyYears excludes observations older than Year - RecencyYears
	// from the scoring distribution.
	RecencyYears int `mapstructure:"recency_years" yaml:"recency_years"`

	// DuplicateTolerant lists ISO3 codes that may appear twice in a
	// normalization slice because two territories share the code.
	DuplicateTolerant []string `mapstructure:"duplicate_tolerant" yaml:"duplicate_tolerant"`

	// SourceIDs is the list of sources to process.
	// Empty slice means process all sources from sources.yaml.
	SourceIDs []string `mapstructure:"source_ids" yaml:"source_ids"`
}

// ReferenceConfig locates country reference tables. Relative paths are
// resolved against InputDir.
type ReferenceConfig struct {
	// CountriesFile is a CSV with the master list of countries
	// (COUNTRY_ISO_3, COUNTRY_NAME, COUNTRY_ISO_2).
	CountriesFile string `mapstructure:"countries_file" yaml:"countries_file"`

	// VariantsFile is a CSV with all known country name variants
	// (COUNTRY_NAME, COUNTRY_ISO_2, COUNTRY_ISO_3).
	VariantsFile string `mapstructure:"variants_file" yaml:"variants_file"`
}

// ExportConfig contains settings for writing results.
type ExportConfig struct {
	// Formats can include 'csv', 'sqlite' and 'postgres'.
	Formats []string `mapstructure:"formats" yaml:"formats"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of rows sent per CopyFrom call.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		InputDir:  "data_in",
		OutputDir: "data_out",
		Run: RunConfig{
			WhiskerFactor:     1.5,
			MaxScore:          10,
			RecencyYears:      10,
			DuplicateTolerant: []string{"FSM"},
		},
		Reference: ReferenceConfig{
			CountriesFile: "crba_country_list.csv",
			VariantsFile:  "all_countrynames_list.csv",
		},
		Export: ExportConfig{
			Formats: []string{"csv"},
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "crba",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
