package iodb

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// ConnectionError is returned when database connection fails.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database <em>%s</em> does not exist
  - Wrong credentials

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>
  3. Check <em>database</em> section of ~/.config/crba/config.yaml
     or CRBA_DATABASE_* environment variables`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{database, host, port, host, user},
		Err: fmt.Errorf(
			"failed to connect to %s:%d/%s: %w", host, port, database, err,
		),
	}
}

// TableCheckError is returned when checking for tables fails.
func TableCheckError(err error) error {
	msg := "Cannot verify database state"

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// NotConnectedError is returned when an operation needs a
// connection that was not established.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  errors.New("not connected to database"),
	}
}

// TableExistsCheckError is returned when a table existence
// check fails.
func TableExistsCheckError(table string, err error) error {
	msg := "Cannot check if table <em>%s</em> exists"

	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to check table %s: %w", table, err),
	}
}

// DropTableError is returned when a table cannot be dropped.
func DropTableError(table string, err error) error {
	msg := `Cannot drop table <em>%s</em>

<em>How to fix:</em>
  Check that the database user owns the table`

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
