package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-g-d-c/crba-etl/pkg/config"
)

// Operator defines basic database management operations for the
// PostgreSQL export. It manages the connection and exposes the
// pgxpool.Pool to the schema manager and the exporter.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool. Exporter uses it for
	// transactions and CopyFrom bulk inserts.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if any of the given tables exist. Used to decide
	// if table creation needs the force flag.
	HasTables(ctx context.Context, tableNames []string) (bool, error)

	// DropTables drops the given tables if they exist.
	DropTables(ctx context.Context, tableNames []string) error
}
