package ioexport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type sqliteExporter struct{}

func (e *sqliteExporter) Format() string {
	return FormatSQLite
}

// Export writes all tables into a fresh SQLite file in dir.
func (e *sqliteExporter) Export(
	ctx context.Context,
	dir string,
	out *lifecycle.Output,
) error {
	path := filepath.Join(dir, SQLiteFile)
	_ = os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return SQLiteError(path, err)
	}
	defer db.Close()

	for _, t := range tables(out) {
		if err = writeSQLiteTable(ctx, db, t); err != nil {
			return SQLiteError(path, err)
		}
		slog.Debug("SQLite table written",
			"table", t.name,
			"rows", humanize.Comma(int64(len(t.rows))),
		)
	}

	slog.Info("SQLite database written", "path", path)
	return nil
}

func writeSQLiteTable(ctx context.Context, db *sql.DB, t table) error {
	defs := make([]string, len(t.columns))
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = fmt.Sprintf("%q %s", c, t.types[i])
		cols[i] = fmt.Sprintf("%q", c)
	}
	create := fmt.Sprintf("CREATE TABLE %q (%s)", t.name, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %q (%s) VALUES (%s)", t.name, strings.Join(cols, ","), ph,
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
