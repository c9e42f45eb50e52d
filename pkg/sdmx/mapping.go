package sdmx

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// MappingVersion is the only supported version of columns.yaml.
const MappingVersion = 1

// ColumnMapping is the versioned dictionary that harmonizes raw sources.
// It is loaded once per run and passed to the schema mapper explicitly.
type ColumnMapping struct {
	// Version of the mapping format.
	Version int `yaml:"version"`

	// Columns maps raw column names to canonical column names.
	Columns map[string]string `yaml:"columns"`

	// Values maps a canonical dimension or attribute column to target
	// values, each with the list of raw spellings that become it.
	Values map[string]map[string][]string `yaml:"values"`

	// ValuePatterns maps raw value column names to a regular expression.
	// The first capture group of a match replaces the raw value.
	ValuePatterns map[string]string `yaml:"value_patterns"`

	// NAValues are strings that mean "no data".
	NAValues []string `yaml:"na_values"`

	patterns map[string]*regexp.Regexp
	na       map[string]struct{}
	lookup   map[string]map[string]string
}

// Validate checks the mapping and prepares it for use. It has to be
// called before the mapping is used.
func (m *ColumnMapping) Validate() error {
	if m.Version != MappingVersion {
		return MappingError(
			fmt.Errorf("unsupported mapping version %d, expected %d",
				m.Version, MappingVersion),
		)
	}
	if len(m.Columns) == 0 {
		return MappingError(fmt.Errorf("no column mappings"))
	}
	for raw, canonical := range m.Columns {
		if RoleOf(canonical) == RoleUnknown {
			return MappingError(
				fmt.Errorf("column '%s' maps to unknown column '%s'",
					raw, canonical),
			)
		}
	}

	m.lookup = make(map[string]map[string]string, len(m.Values))
	for col, targets := range m.Values {
		role := RoleOf(col)
		if role != RoleDimension && role != RoleAttribute {
			return MappingError(
				fmt.Errorf("values of '%s' cannot be mapped, "+
					"only dimensions and attributes", col),
			)
		}
		lu := make(map[string]string)
		for target, raws := range targets {
			for _, raw := range raws {
				if prev, ok := lu[raw]; ok && prev != target {
					return MappingError(
						fmt.Errorf("value '%s' of '%s' maps to '%s' and '%s'",
							raw, col, prev, target),
					)
				}
				lu[raw] = target
			}
		}
		m.lookup[col] = lu
	}

	m.patterns = make(map[string]*regexp.Regexp, len(m.ValuePatterns))
	for col, p := range m.ValuePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return MappingError(
				fmt.Errorf("value pattern of '%s': %w", col, err),
			)
		}
		if re.NumSubexp() < 1 {
			return MappingError(
				fmt.Errorf("value pattern of '%s' has no capture group", col),
			)
		}
		m.patterns[col] = re
	}

	m.na = make(map[string]struct{}, len(m.NAValues))
	for _, v := range m.NAValues {
		m.na[strings.TrimSpace(v)] = struct{}{}
	}
	return nil
}

// Target returns the canonical name of a raw column.
func (m *ColumnMapping) Target(raw string) (string, bool) {
	res, ok := m.Columns[raw]
	return res, ok
}

// IsNA checks if a string means "no data". Empty strings always do.
func (m *ColumnMapping) IsNA(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := m.na[s]
	return ok
}

// Pattern returns the value pattern of a raw column, if any.
func (m *ColumnMapping) Pattern(raw string) *regexp.Regexp {
	return m.patterns[raw]
}

// MappedColumns returns canonical columns that have value mappings.
func (m *ColumnMapping) MappedColumns() []string {
	res := make([]string, 0, len(m.lookup))
	for k := range m.lookup {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// ValueTarget returns the harmonized value of a raw value of a column.
func (m *ColumnMapping) ValueTarget(col, raw string) (string, bool) {
	lu, ok := m.lookup[col]
	if !ok {
		return "", false
	}
	res, ok := lu[raw]
	return res, ok
}

// HasValueMapping checks if a column has a value mapping.
func (m *ColumnMapping) HasValueMapping(col string) bool {
	_, ok := m.lookup[col]
	return ok
}
