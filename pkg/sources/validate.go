package sources

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/encode"
	"github.com/m-g-d-c/crba-etl/pkg/normalize"
)

// Validate checks the configuration for errors and applies defaults.
func (c *SourcesConfig) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources specified in configuration")
	}

	ids := make(map[string]int, len(c.Sources))
	for i := range c.Sources {
		warnings, err := c.Sources[i].Validate(i + 1)
		if err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
		id := c.Sources[i].ID
		if prev, ok := ids[id]; ok {
			return fmt.Errorf(
				"source %d: id '%s' is already used by source %d",
				i+1, id, prev,
			)
		}
		ids[id] = i + 1
		c.Warnings = append(c.Warnings, warnings...)
	}

	return nil
}

// Validate checks a single source configuration for data structure
// validity. File existence is checked at runtime (I/O layer).
// Returns a slice of warnings (non-fatal issues) and an error (fatal
// issues).
func (s *SourceConfig) Validate(index int) ([]ValidationWarning, error) {
	var warnings []ValidationWarning
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	if s.File == "" {
		return nil, fmt.Errorf("%s: file is required", s.ID)
	}

	if s.Format == "" {
		s.Format = formatFromExt(s.File)
	}
	s.Format = strings.ToLower(s.Format)
	switch s.Format {
	case FormatCSV, FormatJSON:
	case FormatSQLite:
		if s.Table == "" {
			return nil, fmt.Errorf("%s: table is required for sqlite files", s.ID)
		}
	default:
		return nil, fmt.Errorf(
			"%s: unsupported format '%s', use csv, json or sqlite",
			s.ID, s.Format,
		)
	}
	if len([]rune(s.Delimiter)) > 1 {
		return nil, fmt.Errorf(
			"%s: delimiter '%s' must be a single character", s.ID, s.Delimiter,
		)
	}

	if s.Code == "" {
		return nil, fmt.Errorf("%s: indicator code is required", s.ID)
	}
	for _, v := range []struct{ field, val string }{
		{"name", s.Name},
		{"index", s.Index},
		{"issue", s.Issue},
		{"category", s.Category},
	} {
		if v.val == "" {
			warnings = append(warnings, ValidationWarning{
				SourceID:   s.ID,
				Field:      v.field,
				Message:    fmt.Sprintf("%s is empty", v.field),
				Suggestion: "Aggregated scores group indicators by index, issue and category",
			})
		}
	}

	if s.IsTreaty() {
		if _, err := encode.TreatyRules(s.TreatyBody); err != nil {
			return nil, fmt.Errorf("%s: %w", s.ID, err)
		}
	} else if !encode.IsContinuous(s.Encoding) {
		if _, err := encode.Parse(s.Encoding); err != nil {
			return nil, fmt.Errorf("%s: %w", s.ID, err)
		}
	}

	if _, err := normalize.ParseFilter(s.DimensionFilter); err != nil {
		return nil, fmt.Errorf("%s: %w", s.ID, err)
	}

	switch strings.ToLower(strings.TrimSpace(s.Inverted)) {
	case "", normalize.Inverted, normalize.NotInverted:
	default:
		return nil, fmt.Errorf(
			"%s: inverted must be '%s' or '%s', got '%s'",
			s.ID, normalize.Inverted, normalize.NotInverted, s.Inverted,
		)
	}

	if s.VariableType == "" && !s.IsTreaty() {
		warnings = append(warnings, ValidationWarning{
			SourceID:   s.ID,
			Field:      "variable_type",
			Message:    "variable_type is empty, scores use continuous scaling",
			Suggestion: fmt.Sprintf("Set 'variable_type: %s' or describe the categories", encode.Continuous),
		})
	}

	if s.Encoding != "" && encode.IsContinuous(s.Encoding) &&
		s.VariableType != "" && !encode.IsContinuous(s.VariableType) {
		warnings = append(warnings, ValidationWarning{
			SourceID:   s.ID,
			Field:      "encoding",
			Message:    "continuous encoding of a categorical variable",
			Suggestion: "Provide 'Label=Code' pairs in 'encoding'",
		})
	}

	if s.Address != "" && !IsValidURL(s.Address) {
		warnings = append(warnings, ValidationWarning{
			SourceID:   s.ID,
			Field:      "address",
			Message:    fmt.Sprintf("address '%s' is not a URL", s.Address),
			Suggestion: "Use a full http:// or https:// address",
		})
	}

	return warnings, nil
}

func formatFromExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	default:
		return FormatCSV
	}
}
