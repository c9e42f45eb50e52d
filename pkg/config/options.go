package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptInputDir sets the directory with raw files and reference tables.
func OptInputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Input Directory", s) {
			c.InputDir = s
		}
	}
}

// OptOutputDir sets the directory where run results are written.
func OptOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Directory", s) {
			c.OutputDir = s
		}
	}
}

// OptRunYear sets the processing year.
func OptRunYear(i int) Option {
	return func(c *Config) {
		if isValidInt("Run Year", i) {
			c.Run.Year = i
		}
	}
}

// OptRunWhiskerFactor sets the IQR multiplier of outlier bounds.
func OptRunWhiskerFactor(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Whisker Factor", f) {
			c.Run.WhiskerFactor = f
		}
	}
}

// OptRunMaxScore sets the upper bound of normalized scores.
func OptRunMaxScore(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Max Score", f) {
			c.Run.MaxScore = f
		}
	}
}

// OptRunRecencyYears sets how many years back observations still count
// for scoring.
func OptRunRecencyYears(i int) Option {
	return func(c *Config) {
		if isValidInt("Recency Years", i) {
			c.Run.RecencyYears = i
		}
	}
}

// OptRunDuplicateTolerant sets ISO3 codes allowed to appear twice in a
// normalization slice.
func OptRunDuplicateTolerant(ss []string) Option {
	var codes []string
	for _, v := range ss {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			codes = append(codes, v)
		}
	}
	return func(c *Config) {
		c.Run.DuplicateTolerant = codes
	}
}

// OptRunSourceIDs sets the list of sources to process.
// Empty slice means process all sources from sources.yaml.
// Runtime-only field - not in ToOptions().
func OptRunSourceIDs(ss []string) Option {
	var ids []string
	for _, v := range ss {
		v = strings.TrimSpace(v)
		if v != "" {
			ids = append(ids, v)
		}
	}
	return func(c *Config) {
		if len(ids) > 0 {
			c.Run.SourceIDs = ids
		}
	}
}

// OptReferenceCountriesFile sets the master country list file.
func OptReferenceCountriesFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Countries File", s) {
			c.Reference.CountriesFile = s
		}
	}
}

// OptReferenceVariantsFile sets the country name variants file.
func OptReferenceVariantsFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Variants File", s) {
			c.Reference.VariantsFile = s
		}
	}
}

// OptExportFormats sets output formats.
// Valid values: "csv", "sqlite", "postgres". Invalid entries are ignored.
func OptExportFormats(ss []string) Option {
	var formats []string
	for _, v := range ss {
		v = strings.ToLower(strings.TrimSpace(v))
		if isValidEnum("Export.Format", v) {
			formats = append(formats, v)
		}
	}
	return func(c *Config) {
		if len(formats) > 0 {
			c.Export.Formats = formats
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows per bulk insert.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of sources processed concurrently.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
