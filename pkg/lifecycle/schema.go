// Package lifecycle defines contracts of the phases that follow the
// pure pipeline: preparing the export database and writing results.
package lifecycle

import (
	"context"
)

// SchemaManager defines the interface for export database schema
// management. It uses GORM AutoMigrate for both creation and migration,
// so it is safe to run multiple times.
type SchemaManager interface {
	// Create creates the export tables. Existing tables are dropped
	// when force is true, otherwise their presence is an error.
	Create(ctx context.Context, force bool) error

	// Migrate updates the export tables to the latest models.
	Migrate(ctx context.Context) error
}
