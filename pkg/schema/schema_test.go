package schema_test

import (
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllModels(t *testing.T) {
	assert.Len(t, schema.AllModels(), len(schema.TableNames()))
}

func TestNewObservations(t *testing.T) {
	ind := &sdmx.Indicator{
		Code: "CR_1", Index: "Workplace", Issue: "Child labour", Category: "Outcome",
	}
	f := sdmx.NewFrame("S-1")

	o := sdmx.NewObservation()
	o.SourceID = "S-1"
	o.Indicator = ind
	o.Country = sdmx.Country{ISO2: "DE", ISO3: "DEU", Name: "Germany"}
	o.Time = 2019
	o.Raw = sql.NullString{String: "12.5", Valid: true}
	o.Scaled = 4.5
	o.Dims["DIM_SEX"] = "_T"
	o.Dims["DIM_AGE"] = "Y5T17"
	o.Attrs["ATTR_FOOTNOTE_OF_SOURCE"] = "estimate"
	f.Rows = append(f.Rows, o)

	pad := sdmx.NewObservation()
	pad.SourceID = "S-1"
	pad.Indicator = ind
	pad.Country = sdmx.Country{ISO3: "FRA", Name: "France"}
	pad.ObsStatus = sdmx.ObsStatusMissing
	f.Rows = append(f.Rows, pad)

	rows := schema.NewObservations("run", f)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "run", r.RunID)
	assert.Equal(t, "CR_1", r.IndicatorCode)
	assert.Equal(t, "Child labour", r.Issue)
	assert.Equal(t, "DEU", r.CountryISO3)
	assert.Equal(t, sql.NullInt32{Int32: 2019, Valid: true}, r.TimePeriod)
	assert.Equal(t, "12.5", r.RawValue.String)
	assert.Equal(t, sql.NullFloat64{Float64: 4.5, Valid: true}, r.ScaledValue)
	assert.Equal(t, "DIM_AGE=Y5T17; DIM_SEX=_T", r.Dimensions)
	assert.Equal(t, "ATTR_FOOTNOTE_OF_SOURCE=estimate", r.Attributes)
	assert.Len(t, r.ID, 36)

	r = rows[1]
	assert.False(t, r.TimePeriod.Valid)
	assert.False(t, r.RawValue.Valid)
	assert.False(t, r.ScaledValue.Valid)
	assert.Equal(t, "O", r.ObsStatus)
	assert.Empty(t, r.Dimensions)
	assert.NotEqual(t, rows[0].ID, r.ID)

	again := schema.NewObservations("run", f)
	assert.Equal(t, rows[0].ID, again[0].ID, "ids are deterministic")
	other := schema.NewObservations("run2", f)
	assert.NotEqual(t, rows[0].ID, other[0].ID)
}

func TestNewAggregatedScores(t *testing.T) {
	ss := []aggregate.Score{
		{
			Country:            sdmx.Country{ISO3: "DEU", Name: "Germany"},
			Category:           "Outcome",
			Issue:              "Child labour",
			Index:              "Workplace",
			CategoryIssueScore: 7,
			IssueIndexScore:    6.4,
			IssueIndexRisk:     aggregate.MediumRisk,
			IndexScore:         math.NaN(),
			OverallScore:       5,
			OverallRisk:        aggregate.LowRisk,
		},
	}
	rows := schema.NewAggregatedScores("run", ss)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "DEU", r.CountryISO3)
	assert.Equal(t, 6.4, r.IssueIndexScore.Float64)
	assert.False(t, r.IndexScore.Valid)
	assert.Empty(t, r.IndexRisk)
	assert.Equal(t, aggregate.LowRisk, r.OverallRisk)
}

func TestNewSourceRun(t *testing.T) {
	rc := sdmx.NewRunContext(config.New().Run)
	st := pipeline.Stats{
		RawRows: 10, Matched: 8, Unmatched: 2, Padded: 187,
		Duration: 1500 * time.Millisecond,
	}

	tests := []struct {
		msg    string
		err    error
		status string
	}{
		{"success", nil, schema.StatusOK},
		{"failure", errors.New("boom"), schema.StatusFailed},
	}
	for _, v := range tests {
		r := schema.NewSourceRun(rc, "S-1", st, 195, v.err)
		assert.Equal(t, v.status, r.Status, v.msg)
		assert.Equal(t, rc.RunID, r.RunID, v.msg)
		assert.Equal(t, rc.Year, r.Year, v.msg)
		assert.Equal(t, 195, r.Observations, v.msg)
		assert.Equal(t, 1.5, r.Duration, v.msg)
		if v.err != nil {
			assert.Equal(t, "boom", r.Error, v.msg)
		}
	}
}
