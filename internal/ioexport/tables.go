package ioexport

import (
	"database/sql/driver"

	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
)

// table is an exported table in a database-neutral form.
type table struct {
	name    string
	columns []string
	// types are SQLite column types.
	types []string
	rows  [][]any
}

func tables(out *lifecycle.Output) []table {
	runID := out.RC.RunID
	return []table{
		observationsTable(schema.NewObservations(runID, out.Combined)),
		scoresTable(schema.NewAggregatedScores(runID, out.Scores)),
		sourceRunsTable(out.Runs),
	}
}

func observationsTable(rows []schema.Observation) table {
	res := table{
		name: "observations",
		columns: []string{
			"id", "run_id", "source_id", "indicator_code",
			"indicator_index", "indicator_issue", "indicator_category",
			"country_iso_3", "country_iso_2", "country_name",
			"time_period", "raw_obs_value", "scaled_obs_value", "obs_status",
			"dimensions", "attributes",
		},
		types: []string{
			"TEXT PRIMARY KEY", "TEXT", "TEXT", "TEXT",
			"TEXT", "TEXT", "TEXT",
			"TEXT", "TEXT", "TEXT",
			"INTEGER", "TEXT", "REAL", "TEXT",
			"TEXT", "TEXT",
		},
	}
	res.rows = make([][]any, 0, len(rows))
	for _, v := range rows {
		res.rows = append(res.rows, []any{
			v.ID, v.RunID, v.SourceID, v.IndicatorCode,
			v.Index, v.Issue, v.Category,
			v.CountryISO3, v.CountryISO2, v.CountryName,
			value(v.TimePeriod), value(v.RawValue), value(v.ScaledValue),
			v.ObsStatus, v.Dimensions, v.Attributes,
		})
	}
	return res
}

func scoresTable(rows []schema.AggregatedScore) table {
	res := table{
		name: "aggregated_scores",
		columns: []string{
			"id", "run_id", "country_iso_3", "country_name",
			"indicator_index", "indicator_issue", "indicator_category",
			"category_issue_score", "issue_index_score", "issue_index_risk",
			"index_score", "index_risk", "overall_score", "overall_risk",
		},
		types: []string{
			"TEXT PRIMARY KEY", "TEXT", "TEXT", "TEXT",
			"TEXT", "TEXT", "TEXT",
			"REAL", "REAL", "TEXT",
			"REAL", "TEXT", "REAL", "TEXT",
		},
	}
	res.rows = make([][]any, 0, len(rows))
	for _, v := range rows {
		res.rows = append(res.rows, []any{
			v.ID, v.RunID, v.CountryISO3, v.CountryName,
			v.Index, v.Issue, v.Category,
			value(v.CategoryIssueScore), value(v.IssueIndexScore), v.IssueIndexRisk,
			value(v.IndexScore), v.IndexRisk, value(v.OverallScore), v.OverallRisk,
		})
	}
	return res
}

func sourceRunsTable(rows []schema.SourceRun) table {
	res := table{
		name: "source_runs",
		columns: []string{
			"id", "run_id", "source_id", "year", "status", "error",
			"raw_rows", "observations", "matched", "unmatched", "padded",
			"duration", "created_at",
		},
		types: []string{
			"TEXT PRIMARY KEY", "TEXT", "TEXT", "INTEGER", "TEXT", "TEXT",
			"INTEGER", "INTEGER", "INTEGER", "INTEGER", "INTEGER",
			"REAL", "TIMESTAMP",
		},
	}
	res.rows = make([][]any, 0, len(rows))
	for _, v := range rows {
		res.rows = append(res.rows, []any{
			v.ID, v.RunID, v.SourceID, v.Year, v.Status, v.Error,
			v.RawRows, v.Observations, v.Matched, v.Unmatched, v.Padded,
			v.Duration, v.CreatedAt,
		})
	}
	return res
}

// value unwraps sql.Null* types into plain values or nil.
func value(v driver.Valuer) any {
	res, err := v.Value()
	if err != nil {
		return nil
	}
	return res
}
