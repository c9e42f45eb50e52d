package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Run.SourceIDs).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int
	var f float64

	s = c.InputDir
	if s != "" {
		res = append(res, OptInputDir(s))
	}
	s = c.OutputDir
	if s != "" {
		res = append(res, OptOutputDir(s))
	}

	i = c.Run.Year
	if i > 0 {
		res = append(res, OptRunYear(i))
	}
	f = c.Run.WhiskerFactor
	if f > 0 {
		res = append(res, OptRunWhiskerFactor(f))
	}
	f = c.Run.MaxScore
	if f > 0 {
		res = append(res, OptRunMaxScore(f))
	}
	i = c.Run.RecencyYears
	if i > 0 {
		res = append(res, OptRunRecencyYears(i))
	}
	if c.Run.DuplicateTolerant != nil {
		res = append(res, OptRunDuplicateTolerant(c.Run.DuplicateTolerant))
	}

	s = c.Reference.CountriesFile
	if s != "" {
		res = append(res, OptReferenceCountriesFile(s))
	}
	s = c.Reference.VariantsFile
	if s != "" {
		res = append(res, OptReferenceVariantsFile(s))
	}

	if len(c.Export.Formats) > 0 {
		res = append(res, OptExportFormats(c.Export.Formats))
	}

	s = c.Database.Host
	if s != "" {
		res = append(res, OptDatabaseHost(s))
	}
	i = c.Database.Port
	if i > 0 {
		res = append(res, OptDatabasePort(i))
	}
	s = c.Database.User
	if s != "" {
		res = append(res, OptDatabaseUser(s))
	}
	s = c.Database.Password
	if s != "" {
		res = append(res, OptDatabasePassword(s))
	}
	s = c.Database.Database
	if s != "" {
		res = append(res, OptDatabaseDatabase(s))
	}
	s = c.Database.SSLMode
	if s != "" {
		res = append(res, OptDatabaseSSLMode(s))
	}
	i = c.Database.BatchSize
	if i > 0 {
		res = append(res, OptDatabaseBatchSize(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidFloat(name string, f float64) bool {
	res := f > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %v", name, f)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
		"Export.Format":   {"csv": s, "sqlite": s, "postgres": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
