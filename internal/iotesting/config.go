// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-g-d-c/crba-etl/internal/iodb"
	"github.com/m-g-d-c/crba-etl/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "crba_test"
)

// GetTestConfig returns a configuration suitable for tests. HomeDir,
// InputDir and OutputDir point to a temporary directory, database
// settings come from CRBA_DATABASE_* environment variables and the
// database name is always TestDatabaseName.
func GetTestConfig(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()

	opts := []config.Option{
		config.OptHomeDir(home),
		config.OptInputDir(filepath.Join(home, "data_in")),
		config.OptOutputDir(filepath.Join(home, "data_out")),
		config.OptJobsNumber(2),
		config.OptRunYear(2023),
	}
	if v := os.Getenv("CRBA_DATABASE_HOST"); v != "" {
		opts = append(opts, config.OptDatabaseHost(v))
	}
	if v := os.Getenv("CRBA_DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if v := os.Getenv("CRBA_DATABASE_USER"); v != "" {
		opts = append(opts, config.OptDatabaseUser(v))
	}
	if v := os.Getenv("CRBA_DATABASE_PASSWORD"); v != "" {
		opts = append(opts, config.OptDatabasePassword(v))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))

	cfg := config.New()
	cfg.Update(opts)
	return cfg
}

// SkipWithoutDatabase skips a test in short mode or when the test
// database is not reachable.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    cfg := iotesting.GetTestConfig(t)
//	    iotesting.SkipWithoutDatabase(t, cfg)
//	    // ... use cfg.Database
//	}
func SkipWithoutDatabase(t *testing.T, cfg *config.Config) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := pgx.Connect(ctx, iodb.DSN(&cfg.Database))
	if err != nil {
		t.Skipf("Skipping integration test, no database %s: %v",
			cfg.Database.Database, err)
	}
	conn.Close(ctx)
}

// WriteFile writes content to a file under dir, creating parent
// directories. Returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteSourcesYAML writes sources.yaml to the config directory of cfg.
func WriteSourcesYAML(t *testing.T, cfg *config.Config, content string) {
	t.Helper()
	WriteFile(t, config.ConfigDir(cfg.HomeDir), "sources.yaml", content)
}
