package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestEnsureDirs verifies all required directories are created and
// repeated calls succeed.
func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()

	for range 3 {
		err := EnsureDirs(tmpDir)
		require.NoError(t, err)
	}

	dirs := []string{
		filepath.Join(tmpDir, ".config", "crba"),
		filepath.Join(tmpDir, ".local", "share", "crba", "logs"),
	}
	for _, v := range dirs {
		info, err := os.Stat(v)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), v)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), v)
	}
}

func TestTouchDir(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "test", "subdir")

	err := TouchDir(newDir)
	require.NoError(t, err)
	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	err = TouchDir(newDir)
	require.NoError(t, err)

	file := filepath.Join(tmpDir, "file")
	err = os.WriteFile(file, []byte("x"), 0644)
	require.NoError(t, err)
	err = TouchDir(file)
	assert.Error(t, err, "a file is in the way")
}

// TestEnsureFiles verifies default files are written once and never
// overwritten.
func TestEnsureFiles(t *testing.T) {
	tests := []struct {
		name    string
		ensure  func(string) error
		path    func(string) string
		content string
	}{
		{"config", EnsureConfigFile, config.ConfigFilePath, ConfigYAML},
		{"sources", EnsureSourcesFile, config.SourcesFilePath, SourcesYAML},
		{"columns", EnsureColumnsFile, config.ColumnsFilePath, ColumnsYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			require.NoError(t, EnsureDirs(tmpDir))

			err := tt.ensure(tmpDir)
			require.NoError(t, err)

			path := tt.path(tmpDir)
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, content)
			assert.Equal(t, tt.content, string(content))

			custom := "# custom\n"
			err = os.WriteFile(path, []byte(custom), 0644)
			require.NoError(t, err)
			err = tt.ensure(tmpDir)
			require.NoError(t, err)
			content, err = os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, custom, string(content),
				"Existing file should not be overwritten")
		})
	}
}

func TestEnsureFiles_NoDir(t *testing.T) {
	tmpDir := t.TempDir()
	err := EnsureConfigFile(filepath.Join(tmpDir, "missing"))
	assert.Error(t, err)
}

// TestEmbeddedFiles checks that the embedded defaults are valid YAML.
func TestEmbeddedFiles(t *testing.T) {
	for _, v := range []string{ConfigYAML, SourcesYAML, ColumnsYAML} {
		var data map[string]any
		err := yaml.Unmarshal([]byte(v), &data)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}
