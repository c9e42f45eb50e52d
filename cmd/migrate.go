/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/iodb"
	"github.com/m-g-d-c/crba-etl/internal/ioschema"
	"github.com/m-g-d-c/crba-etl/pkg/db"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring export tables to the current schema",
		Long: `Migrate adds tables, columns and indexes that the current
version of crba expects in its PostgreSQL export tables
(observations, aggregated_scores, source_runs).

Rows of earlier runs are kept, they are keyed by run_id. Nothing is
dropped, use 'crba create --force' to start from empty tables.

The 'postgres' export format migrates the tables at the start of
every run, so this command is needed only to prepare the database
ahead of time.

Examples:
  crba migrate`,
		RunE: runMigrate,
	}
}

func runMigrate(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	op, err := connectExportDB(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	missing, err := missingTables(ctx, op)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if len(missing) == len(schema.TableNames()) {
		gn.Warn("No export tables found, run <em>crba create</em> first.")
		return nil
	}
	for _, v := range missing {
		gn.Info("Table <em>%s</em> will be added", v)
	}

	if err = ioschema.NewManager(op).Migrate(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	gn.Info("Export tables are up to date.")
	return nil
}

// connectExportDB connects to the PostgreSQL database that receives
// exported results.
func connectExportDB(ctx context.Context) (db.Operator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}
	gn.Info("Export database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// missingTables lists export tables absent from the database.
func missingTables(ctx context.Context, op db.Operator) ([]string, error) {
	var res []string
	for _, v := range schema.TableNames() {
		ok, err := op.TableExists(ctx, v)
		if err != nil {
			return nil, err
		}
		if !ok {
			res = append(res, v)
		}
	}
	return res, nil
}
