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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/ioschema"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"github.com/spf13/cobra"
)

// getCreateCmd returns the create command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getCreateCmd() *cobra.Command {
	var forceCreate bool

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create export database schema",
		Long: `Create the PostgreSQL tables that receive results of the
'postgres' export format.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks for existing export tables and prompts for confirmation
  3. Creates observations, aggregated_scores and source_runs tables
     using GORM AutoMigrate

Use --force to skip confirmation and drop existing export tables.

Examples:
  crba create
  crba create --force
  crba create -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, forceCreate)
		},
	}

	createCmd.Flags().BoolVarP(&forceCreate, "force", "f",
		false, "drop existing export tables without confirmation")

	return createCmd
}

func runCreate(
	_ *cobra.Command,
	_ []string,
	force bool,
) error {
	ctx := context.Background()

	op, err := connectExportDB(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	hasTables, err := op.HasTables(ctx, schema.TableNames())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if hasTables && !force {
		gn.Warn("\nWarning: Database contains export tables.")
		gn.Warn("Creating schema will drop them with all previous runs.")
		fmt.Print("\nDo you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			gn.Info("Aborted. No changes made.")
			return nil
		}
		force = true
	}
	if hasTables {
		gn.Info("Dropping existing export tables...")
	}

	sm := ioschema.NewManager(op)

	gn.Info("Creating schema using GORM AutoMigrate...")
	if err := sm.Create(ctx, force); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("\nDatabase schema creation complete!")
	gn.Info("\nNext steps:")
	gn.Info("  - Run 'crba run -f postgres' to export results")

	return nil
}
