// Package schema provides models of the exported tables. The same models
// describe PostgreSQL tables created by GORM and SQLite tables of the
// per-run database file.
package schema

import (
	"database/sql"
	"time"
)

// Observation is one scored observation of the combined table.
type Observation struct {
	// ID is UUID v5 generated from run, source, row position, country
	// and dimensions of the observation.
	ID string `db:"id" gorm:"type:uuid;primaryKey"`

	// RunID names the run that produced the row.
	RunID string `db:"run_id" gorm:"type:uuid;not null;index"`

	// SourceID is the sources.yaml ID, for example "S-12".
	SourceID string `db:"source_id" gorm:"type:varchar(50);not null;index"`

	// IndicatorCode is the code of the indicator of the source.
	IndicatorCode string `db:"indicator_code" gorm:"type:varchar(100);not null"`

	// Index, Issue and Category classify the indicator.
	Index    string `db:"indicator_index" gorm:"column:indicator_index;type:varchar(255)"`
	Issue    string `db:"indicator_issue" gorm:"column:indicator_issue;type:varchar(255)"`
	Category string `db:"indicator_category" gorm:"column:indicator_category;type:varchar(255)"`

	// Country identifiers from the master list.
	CountryISO3 string `db:"country_iso_3" gorm:"column:country_iso_3;type:varchar(3);index"`
	CountryISO2 string `db:"country_iso_2" gorm:"column:country_iso_2;type:varchar(2)"`
	CountryName string `db:"country_name" gorm:"type:varchar(255)"`

	// TimePeriod is the year of observation, NULL when unknown.
	TimePeriod sql.NullInt32 `db:"time_period"`

	// RawValue is the observation value as provided (or encoded).
	RawValue sql.NullString `db:"raw_obs_value" gorm:"column:raw_obs_value;type:text"`

	// ScaledValue is the 0-10 score, NULL when not scored.
	ScaledValue sql.NullFloat64 `db:"scaled_obs_value" gorm:"column:scaled_obs_value"`

	// ObsStatus is "O" for padded rows without observation.
	ObsStatus string `db:"obs_status" gorm:"type:varchar(10)"`

	// Dimensions are "DIM_X=v" pairs joined by "; ".
	Dimensions string `db:"dimensions" gorm:"type:text"`

	// Attributes are "ATTR_X=v" pairs joined by "; ".
	Attributes string `db:"attributes" gorm:"type:text"`
}

// AggregatedScore is one row of the aggregated score table.
type AggregatedScore struct {
	// ID is UUID v5 of run, country, category, issue and index.
	ID string `db:"id" gorm:"type:uuid;primaryKey"`

	RunID string `db:"run_id" gorm:"type:uuid;not null;index"`

	CountryISO3 string `db:"country_iso_3" gorm:"column:country_iso_3;type:varchar(3);index"`
	CountryName string `db:"country_name" gorm:"type:varchar(255)"`

	Index    string `db:"indicator_index" gorm:"column:indicator_index;type:varchar(255)"`
	Issue    string `db:"indicator_issue" gorm:"column:indicator_issue;type:varchar(255)"`
	Category string `db:"indicator_category" gorm:"column:indicator_category;type:varchar(255)"`

	CategoryIssueScore sql.NullFloat64 `db:"category_issue_score"`
	IssueIndexScore    sql.NullFloat64 `db:"issue_index_score"`
	IssueIndexRisk     string          `db:"issue_index_risk" gorm:"type:varchar(20)"`
	IndexScore         sql.NullFloat64 `db:"index_score"`
	IndexRisk          string          `db:"index_risk" gorm:"type:varchar(20)"`
	OverallScore       sql.NullFloat64 `db:"overall_score"`
	OverallRisk        string          `db:"overall_risk" gorm:"type:varchar(20)"`
}

// SourceRun records the outcome of one source in one run.
type SourceRun struct {
	// ID is UUID v5 of run and source IDs.
	ID string `db:"id" gorm:"type:uuid;primaryKey"`

	RunID    string `db:"run_id" gorm:"type:uuid;not null;index"`
	SourceID string `db:"source_id" gorm:"type:varchar(50);not null"`

	// Year is the processing year of the run.
	Year int `db:"year"`

	// Status is StatusOK or StatusFailed.
	Status string `db:"status" gorm:"type:varchar(10);not null"`

	// Error is the failure reason of a failed source.
	Error string `db:"error" gorm:"type:text"`

	RawRows      int `db:"raw_rows"`
	Observations int `db:"observations"`
	Matched      int `db:"matched"`
	Unmatched    int `db:"unmatched"`
	Padded       int `db:"padded"`

	// Duration of processing in seconds.
	Duration float64 `db:"duration"`

	CreatedAt time.Time `db:"created_at"`
}

// Source run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
