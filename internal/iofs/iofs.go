// Package iofs creates the directories crba works with and copies the
// embedded default configuration files into the config directory.
package iofs

import (
	_ "embed"
	"os"

	"github.com/m-g-d-c/crba-etl/pkg/config"
)

//go:embed config.yaml
var ConfigYAML string

//go:embed sources.yaml
var SourcesYAML string

//go:embed columns.yaml
var ColumnsYAML string

// EnsureDirs creates config and log directories under homeDir.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := TouchDir(v); err != nil {
			return err
		}
	}
	return nil
}

// TouchDir creates a directory if it does not exist yet.
func TouchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml unless it exists.
func EnsureConfigFile(homeDir string) error {
	return ensureFile(config.ConfigFilePath(homeDir), ConfigYAML)
}

// EnsureSourcesFile writes the example sources.yaml unless it exists.
func EnsureSourcesFile(homeDir string) error {
	return ensureFile(config.SourcesFilePath(homeDir), SourcesYAML)
}

// EnsureColumnsFile writes the default column mapping unless it exists.
func EnsureColumnsFile(homeDir string) error {
	return ensureFile(config.ColumnsFilePath(homeDir), ColumnsYAML)
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return CopyFileError(path, err)
	}

	return nil
}
