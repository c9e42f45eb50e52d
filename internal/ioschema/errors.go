package ioschema

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// NotConnectedError is returned when export tables are created or
// migrated before the operator connected to PostgreSQL.
func NotConnectedError(action string) error {
	msg := `Cannot %s export tables: no PostgreSQL connection

<em>How to fix:</em>
  Connect the database operator before using the schema manager`

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: []any{action},
		Err:  fmt.Errorf("%s export tables: not connected", action),
	}
}

// GormOpenError is returned when GORM cannot use the pgx pool.
func GormOpenError(err error) error {
	msg := `Cannot open export database with GORM

<em>How to fix:</em>
  1. Check <em>database</em> section of config.yaml
  2. Make sure the PostgreSQL server accepts connections`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("open gorm on pgx pool: %w", err),
	}
}

// CreateSchemaError is returned when export tables cannot be created.
func CreateSchemaError(tables []string, err error) error {
	msg := `Cannot create export tables: <em>%s</em>

<em>How to fix:</em>
  1. Give the database user CREATE permission
  2. Drop leftovers of a failed attempt with <em>crba create --force</em>`

	list := strings.Join(tables, ", ")

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: []any{list},
		Err:  fmt.Errorf("create tables %s: %w", list, err),
	}
}

// MigrateSchemaError is returned when export tables cannot be brought to
// the current layout. Rows of earlier runs stay untouched.
func MigrateSchemaError(tables []string, err error) error {
	msg := `Cannot migrate export tables: <em>%s</em>

Results of earlier runs were not changed.

<em>How to fix:</em>
  1. Give the database user ALTER permission
  2. If columns changed type, save earlier runs and use
     <em>crba create --force</em>`

	list := strings.Join(tables, ", ")

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: []any{list},
		Err:  fmt.Errorf("migrate tables %s: %w", list, err),
	}
}

// TablesExistError is returned when export tables exist
// and creation was not forced.
func TablesExistError(tables []string) error {
	msg := `Export tables already exist: <em>%s</em>

<em>How to fix:</em>
  1. Run <em>crba migrate</em> to update existing tables
  2. Run <em>crba create --force</em> to drop and recreate them`

	list := strings.Join(tables, ", ")

	return &gn.Error{
		Code: errcode.SchemaTablesExistError,
		Msg:  msg,
		Vars: []any{list},
		Err:  fmt.Errorf("tables exist: %s", list),
	}
}
