package ioexport

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// FormatError is returned for an unknown export format.
func FormatError(format string) error {
	msg := `Unknown export format <em>%s</em>

<em>How to fix:</em>
  Use csv, sqlite or postgres in <em>export.formats</em>`

	return &gn.Error{
		Code: errcode.ExportFormatError,
		Msg:  msg,
		Vars: []any{format},
		Err:  fmt.Errorf("unknown export format %q", format),
	}
}

// CSVError is returned when a CSV file cannot be written.
func CSVError(path string, err error) error {
	msg := "Cannot write CSV file <em>%s</em>"

	return &gn.Error{
		Code: errcode.ExportCSVError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot write %s: %w", path, err),
	}
}

// SQLiteError is returned when the SQLite database cannot be written.
func SQLiteError(path string, err error) error {
	msg := "Cannot write SQLite database <em>%s</em>"

	return &gn.Error{
		Code: errcode.ExportSQLiteError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot write %s: %w", path, err),
	}
}

// PostgresError is returned when rows cannot be copied to PostgreSQL.
func PostgresError(table string, err error) error {
	msg := `Cannot export to PostgreSQL table <em>%s</em>

<em>How to fix:</em>
  Run <em>crba migrate</em> and check database permissions`

	if table == "" {
		table = "(transaction)"
	}

	return &gn.Error{
		Code: errcode.ExportPostgresError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("postgres export to %s: %w", table, err),
	}
}

// ReportError is returned when the run report cannot be saved.
func ReportError(path string, err error) error {
	msg := "Cannot write run report <em>%s</em>"

	return &gn.Error{
		Code: errcode.ExportReportError,
		Msg:  msg,
		Vars: []any{path},
		Err:  errors.Join(fmt.Errorf("cannot write %s", path), err),
	}
}
