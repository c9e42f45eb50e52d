// Package ioschema implements SchemaManager interface for
// the export database. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/m-g-d-c/crba-etl/pkg/db"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the export tables using GORM AutoMigrate.
func (m *manager) Create(ctx context.Context, force bool) error {
	tables := schema.TableNames()
	exists, err := m.operator.HasTables(ctx, tables)
	if err != nil {
		return err
	}
	if exists {
		if !force {
			return TablesExistError(tables)
		}
		slog.Warn("Dropping existing export tables", "tables", tables)
		if err = m.operator.DropTables(ctx, tables); err != nil {
			return err
		}
	}

	gormDB, err := m.gorm(ctx, "create")
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(tables, err)
	}
	slog.Info("Export tables created", "tables", tables)
	return nil
}

// Migrate updates the export tables to the latest version
// using GORM AutoMigrate.
func (m *manager) Migrate(ctx context.Context) error {
	gormDB, err := m.gorm(ctx, "migrate")
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(schema.TableNames(), err)
	}
	return nil
}

// gorm opens GORM on top of the operator pool.
func (m *manager) gorm(ctx context.Context, action string) (*gorm.DB, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError(action)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GormOpenError(err)
	}
	return gormDB.WithContext(ctx), nil
}
