// Package iosources reads sources.yaml from the configuration directory.
package iosources

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

// New creates a loader of sources.yaml that lives in the config
// directory under cfg.HomeDir.
func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

func (s *iosources) Load() (*sources.SourcesConfig, error) {
	sourcesPath := config.SourcesFilePath(s.cfg.HomeDir)
	if _, err := os.Stat(sourcesPath); errors.Is(err, fs.ErrNotExist) {
		return nil, SourcesNotFoundError(sourcesPath)
	}
	sourcesConfig, err := loadSourcesConfig(sourcesPath, s.cfg)
	if err != nil {
		return nil, SourcesConfigError(sourcesPath, err)
	}
	return sourcesConfig, nil
}

// loadSourcesConfig reads and validates sources.yaml from disk.
// It performs data structure validation (via SourcesConfig.Validate)
// and resolves raw file paths against the input directory. Missing raw
// files are reported as warnings: the source fails on its own at
// extraction time, the rest of the run goes on.
func loadSourcesConfig(
	path string,
	cfg *config.Config,
) (*sources.SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config file: %w", err)
	}

	var res sources.SourcesConfig
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}

	for i := range res.Sources {
		src := &res.Sources[i]
		src.File = resolveFile(src.File, cfg)
		if _, err := os.Stat(src.File); err != nil {
			res.Warnings = append(res.Warnings, sources.ValidationWarning{
				SourceID:   src.ID,
				Field:      "file",
				Message:    fmt.Sprintf("cannot access raw file %s", src.File),
				Suggestion: "Download the raw file or fix 'file' or 'input_dir'",
			})
		}
	}

	for _, w := range res.Warnings {
		slog.Warn("Source configuration warning",
			"source_id", w.SourceID,
			"field", w.Field,
			"message", w.Message,
			"suggestion", w.Suggestion)
	}

	return &res, nil
}

func resolveFile(path string, cfg *config.Config) string {
	if strings.HasPrefix(path, "~/") && cfg.HomeDir != "" {
		return filepath.Join(cfg.HomeDir, path[2:])
	}
	return cfg.ResolvePath(path)
}
