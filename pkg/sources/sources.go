// Package sources provides configuration and validation of indicator
// sources.
//
// This package defines the schema for sources.yaml. Every entry describes
// one already downloaded raw file: where it is, how to read it, the
// metadata of the indicator it carries and how its values are encoded and
// scored.
package sources

import (
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

type Sources interface {
	Load() (*SourcesConfig, error)
}

// SourcesConfig represents the complete sources.yaml configuration file.
type SourcesConfig struct {
	// Sources is the list of indicator sources in processing order.
	Sources []SourceConfig `yaml:"sources"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	SourceID   string // ID of the source
	Field      string // Field name that has the issue
	Message    string // Description of the issue
	Suggestion string // How to fix it
}

// Raw file formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// SourceConfig represents configuration of a single indicator source.
type SourceConfig struct {
	// ID identifies the source, for example "S-12". It has to be unique.
	ID string `yaml:"id"`

	// File is the path to the raw file, relative paths are resolved
	// against the input directory.
	File string `yaml:"file"`

	// Format of the file: csv, json or sqlite. When empty it is taken
	// from the file extension.
	Format string `yaml:"format,omitempty"`

	// Table is the table to read from a SQLite file.
	Table string `yaml:"table,omitempty"`

	// Delimiter of a CSV file, comma by default.
	Delimiter string `yaml:"delimiter,omitempty"`

	// Records is the dot-separated path to the list of records inside a
	// JSON document. Empty means the document itself is the list.
	Records string `yaml:"records,omitempty"`

	// Indicator metadata.
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Index       string `yaml:"index"`
	Issue       string `yaml:"issue"`
	Category    string `yaml:"category"`
	Address     string `yaml:"address,omitempty"`
	SourceBody  string `yaml:"source_body,omitempty"`
	Description string `yaml:"description,omitempty"`
	Explanation string `yaml:"explanation,omitempty"`
	Methodology string `yaml:"methodology,omitempty"`
	SourceTitle string `yaml:"source_title,omitempty"`
	EndpointURL string `yaml:"endpoint_url,omitempty"`
	Unit        string `yaml:"unit,omitempty"`

	// Encoding is "Continuous variable" or a "Label=Code; ..." list.
	Encoding string `yaml:"encoding,omitempty"`

	// NACode replaces missing values of encoded sources, "0" by default.
	NACode string `yaml:"na_code,omitempty"`

	// DimensionFilter selects the rows that are scored, for example
	// `DIM_SEX == "_T" & DIM_AGE_GROUP == "_T"`.
	DimensionFilter string `yaml:"dimension_filter,omitempty"`

	// Inverted is "inverted" when a high raw value means a bad outcome.
	Inverted string `yaml:"inverted,omitempty"`

	// VariableType is "Continuous variable" or a categorical description.
	VariableType string `yaml:"variable_type,omitempty"`

	// TreatyBody makes the source a treaty ratification table:
	// "UN Treaties", "ILO NORMLEX" or "ICRC".
	TreatyBody string `yaml:"treaty_body,omitempty"`

	// CountryKey names the country identifier of the raw data: iso2, iso3
	// or name. When empty it is detected from the data.
	CountryKey sdmx.CountryKey `yaml:"country_key,omitempty"`

	// Footnotes splits footnotes glued to country names, as found in ILO
	// NORMLEX tables.
	Footnotes bool `yaml:"footnotes,omitempty"`
}

// Indicator returns the metadata of the source.
func (s *SourceConfig) Indicator() sdmx.Indicator {
	return sdmx.Indicator{
		Code:        s.Code,
		Name:        s.Name,
		Index:       s.Index,
		Issue:       s.Issue,
		Category:    s.Category,
		Address:     s.Address,
		SourceBody:  s.SourceBody,
		Description: s.Description,
		Explanation: s.Explanation,
		Methodology: s.Methodology,
		SourceTitle: s.SourceTitle,
		EndpointURL: s.EndpointURL,
		Unit:        s.Unit,
	}
}

// IsTreaty is true for treaty ratification sources.
func (s *SourceConfig) IsTreaty() bool {
	return s.TreatyBody != ""
}
