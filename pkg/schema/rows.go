package schema

import (
	"database/sql"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/gnuuid"
	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// NewObservations converts a combined frame into table rows.
func NewObservations(runID string, f *sdmx.Frame) []Observation {
	res := make([]Observation, 0, f.Len())
	for i, v := range f.Rows {
		o := Observation{
			RunID:       runID,
			SourceID:    v.SourceID,
			CountryISO3: v.Country.ISO3,
			CountryISO2: v.Country.ISO2,
			CountryName: v.Country.Name,
			RawValue:    v.Raw,
			ScaledValue: nullFloat(v.Scaled),
			ObsStatus:   v.ObsStatus,
			Dimensions:  pairs(v.Dims),
			Attributes:  pairs(v.Attrs),
		}
		if ind := v.Indicator; ind != nil {
			o.IndicatorCode = ind.Code
			o.Index = ind.Index
			o.Issue = ind.Issue
			o.Category = ind.Category
		}
		if v.Time > 0 {
			o.TimePeriod = sql.NullInt32{Int32: int32(v.Time), Valid: true}
		}
		o.ID = rowID(runID, v.SourceID, strconv.Itoa(i), v.Country.ISO3,
			o.Dimensions)
		res = append(res, o)
	}
	return res
}

// NewAggregatedScores converts aggregated scores into table rows.
func NewAggregatedScores(runID string, ss []aggregate.Score) []AggregatedScore {
	res := make([]AggregatedScore, 0, len(ss))
	for _, v := range ss {
		res = append(res, AggregatedScore{
			ID: rowID(runID, v.Country.ISO3, v.Category, v.Issue, v.Index),

			RunID:              runID,
			CountryISO3:        v.Country.ISO3,
			CountryName:        v.Country.Name,
			Index:              v.Index,
			Issue:              v.Issue,
			Category:           v.Category,
			CategoryIssueScore: nullFloat(v.CategoryIssueScore),
			IssueIndexScore:    nullFloat(v.IssueIndexScore),
			IssueIndexRisk:     v.IssueIndexRisk,
			IndexScore:         nullFloat(v.IndexScore),
			IndexRisk:          v.IndexRisk,
			OverallScore:       nullFloat(v.OverallScore),
			OverallRisk:        v.OverallRisk,
		})
	}
	return res
}

// NewSourceRun records the outcome of a source. A non-nil err marks the
// source as failed.
func NewSourceRun(
	rc *sdmx.RunContext,
	sourceID string,
	st pipeline.Stats,
	observations int,
	err error,
) SourceRun {
	res := SourceRun{
		ID:           rowID(rc.RunID, sourceID),
		RunID:        rc.RunID,
		SourceID:     sourceID,
		Year:         rc.Year,
		Status:       StatusOK,
		RawRows:      st.RawRows,
		Observations: observations,
		Matched:      st.Matched,
		Unmatched:    st.Unmatched,
		Padded:       st.Padded,
		Duration:     st.Duration.Seconds(),
		CreatedAt:    time.Now().UTC(),
	}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
	}
	return res
}

func rowID(parts ...string) string {
	return gnuuid.New(strings.Join(parts, "|")).String()
}

func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func pairs(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	res := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		res = append(res, k+"="+m[k])
	}
	return strings.Join(res, "; ")
}
