package ioexport

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5"
	"github.com/m-g-d-c/crba-etl/internal/iodb"
	"github.com/m-g-d-c/crba-etl/internal/ioschema"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
)

type postgresExporter struct {
	cfg config.DatabaseConfig
}

func (e *postgresExporter) Format() string {
	return FormatPostgres
}

// Export appends all tables of the run to PostgreSQL. Tables are created
// or migrated first, rows of different runs are kept apart by run_id.
func (e *postgresExporter) Export(
	ctx context.Context,
	_ string,
	out *lifecycle.Output,
) error {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &e.cfg); err != nil {
		return err
	}
	defer op.Close()

	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}

	batchSize := e.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	tx, err := op.Pool().Begin(ctx)
	if err != nil {
		return PostgresError("", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tables(out) {
		var total int64
		for start := 0; start < len(t.rows); start += batchSize {
			end := min(start+batchSize, len(t.rows))
			n, err := tx.CopyFrom(
				ctx,
				pgx.Identifier{t.name},
				t.columns,
				pgx.CopyFromRows(t.rows[start:end]),
			)
			if err != nil {
				return PostgresError(t.name, err)
			}
			total += n
		}
		slog.Debug("PostgreSQL table written",
			"table", t.name,
			"rows", humanize.Comma(total),
		)
	}

	if err = tx.Commit(ctx); err != nil {
		return PostgresError("", err)
	}
	slog.Info("PostgreSQL export done",
		"database", e.cfg.Database,
		"run_id", out.RC.RunID,
	)
	return nil
}
