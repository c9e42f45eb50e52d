package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "crba"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/crba by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/crba/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/crba/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// SourcesFilePath returns the full path to the sources.yaml file.
func SourcesFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "sources.yaml")
}

// ColumnsFilePath returns the full path to the columns.yaml file with
// the column and value mapping of raw sources.
func ColumnsFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "columns.yaml")
}

// ResolvePath returns path unchanged if it is absolute, otherwise joins it
// with InputDir.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.InputDir, path)
}
