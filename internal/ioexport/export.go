// Package ioexport writes results of a run: CSV tables, a SQLite
// database, PostgreSQL tables and the run report.
package ioexport

import (
	"path/filepath"

	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
)

// Export formats.
const (
	FormatCSV      = "csv"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// Output file names.
const (
	CombinedFile = "combined_normalized.csv"
	ScoresFile   = "aggregated_scores.csv"
	FinalFile    = "crba_final.csv"
	SQLiteFile   = "crba.sqlite"
	ReportFile   = "run_report.json"
	MetricsFile  = "metrics.prom"
)

const (
	csvDelimiter     = ';'
	defaultBatchSize = 50_000
)

// New creates an exporter for a format.
func New(cfg *config.Config, format string) (lifecycle.Exporter, error) {
	switch format {
	case FormatCSV:
		return &csvExporter{}, nil
	case FormatSQLite:
		return &sqliteExporter{}, nil
	case FormatPostgres:
		return &postgresExporter{cfg: cfg.Database}, nil
	default:
		return nil, FormatError(format)
	}
}

// NewAll creates exporters for all configured formats.
func NewAll(cfg *config.Config) ([]lifecycle.Exporter, error) {
	res := make([]lifecycle.Exporter, 0, len(cfg.Export.Formats))
	for _, v := range cfg.Export.Formats {
		exp, err := New(cfg, v)
		if err != nil {
			return nil, err
		}
		res = append(res, exp)
	}
	return res, nil
}

// RunDir returns the output directory of a run.
func RunDir(cfg *config.Config, runID string) string {
	return filepath.Join(cfg.OutputDir, runID)
}
