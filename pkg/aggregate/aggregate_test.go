package aggregate_test

import (
	"math"
	"testing"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func master(t *testing.T) *sdmx.CountryList {
	res, err := sdmx.NewCountryList([]sdmx.Country{
		{ISO2: "AA", ISO3: "AAA", Name: "Aland"},
		{ISO2: "BB", ISO3: "BBB", Name: "Bland"},
		{ISO2: "CC", ISO3: "CCC", Name: "Cland"},
	})
	require.NoError(t, err)
	return res
}

func indicator(category, issue, index string) *sdmx.Indicator {
	return &sdmx.Indicator{
		Code:     category + "-" + issue,
		Category: category,
		Issue:    issue,
		Index:    index,
	}
}

func add(f *sdmx.Frame, iso3 string, ind *sdmx.Indicator, score float64) {
	o := sdmx.NewObservation()
	o.Country.ISO3 = iso3
	o.Indicator = ind
	o.Scaled = score
	f.Rows = append(f.Rows, o)
}

func find(ss []aggregate.Score, iso3, category, issue string) *aggregate.Score {
	for i := range ss {
		v := ss[i]
		if v.Country.ISO3 == iso3 && v.Category == category && v.Issue == issue {
			return &ss[i]
		}
	}
	return nil
}

func TestThresholds(t *testing.T) {
	th := aggregate.NewThresholds([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, math.NaN()})
	assert.InDelta(t, 3.997, th.Lower, 0.0001)
	assert.InDelta(t, 7.003, th.Upper, 0.0001)

	tests := []struct {
		msg   string
		score float64
		label string
	}{
		{"low score", 1, aggregate.HighRisk},
		{"middle", 5, aggregate.MediumRisk},
		{"high score", 9, aggregate.LowRisk},
		{"no score", math.NaN(), ""},
	}
	for _, v := range tests {
		assert.Equal(t, v.label, th.Label(v.score), v.msg)
	}
	assert.Equal(t, aggregate.MediumRisk, th.Label(th.Lower), "on lower threshold")
	assert.Equal(t, aggregate.MediumRisk, th.Label(th.Upper), "on upper threshold")
}

func TestAggregate(t *testing.T) {
	outcome := indicator("Outcome", "Child labour", "Workplace")
	outcome2 := indicator("Outcome", "Child labour", "Workplace")
	enforcement := indicator("Enforcement", "Child labour", "Workplace")
	legal := indicator("Legal framework", "Child labour", "Workplace")
	other := indicator("Legal framework", "Wages", "Workplace")
	env := indicator("Outcome", "Pollution", "Environment")

	f := sdmx.NewFrame("")
	add(f, "AAA", outcome, 7)
	add(f, "AAA", outcome2, 9)
	add(f, "AAA", enforcement, 6)
	add(f, "AAA", legal, 4)
	add(f, "AAA", legal, math.NaN())
	add(f, "AAA", other, 2)
	add(f, "AAA", env, 5)
	add(f, "BBB", outcome, 10)
	add(f, "BBB", env, math.NaN())
	add(f, "CCC", outcome, 1)
	add(f, "XKX", outcome, 0)
	add(f, "ZZZ", outcome, 0)

	ss, lv, err := aggregate.Aggregate(f, master(t))
	require.NoError(t, err)
	for _, v := range ss {
		assert.NotEqual(t, "XKX", v.Country.ISO3)
		assert.NotEqual(t, "ZZZ", v.Country.ISO3)
	}

	s := find(ss, "AAA", "Outcome", "Child labour")
	require.NotNil(t, s)
	assert.Equal(t, "Aland", s.Country.Name)
	assert.Equal(t, 8.0, s.CategoryIssueScore)
	assert.Equal(t, 6.4, s.IssueIndexScore, "weighted issue score")
	assert.NotEqual(t, 6.0, s.IssueIndexScore)

	s = find(ss, "AAA", "Legal framework", "Child labour")
	require.NotNil(t, s)
	assert.Equal(t, 4.0, s.CategoryIssueScore, "NaN is skipped")

	// Workplace index of AAA: mean of Child labour 6.4 and Wages 2
	assert.InDelta(t, 4.2, s.IndexScore, 0.0001)
	// overall of AAA: mean of Workplace 4.2 and Environment 5
	assert.InDelta(t, 4.6, s.OverallScore, 0.0001)

	s = find(ss, "BBB", "Outcome", "Child labour")
	require.NotNil(t, s)
	assert.Equal(t, 10.0, s.OverallScore, "NaN index is skipped")
	assert.Equal(t, aggregate.LowRisk, s.OverallRisk)

	s = find(ss, "CCC", "Outcome", "Child labour")
	require.NotNil(t, s)
	assert.Equal(t, aggregate.HighRisk, s.OverallRisk)
	assert.Equal(t, aggregate.HighRisk, s.IndexRisk)

	for _, v := range ss {
		if v.Country.ISO3 == "BBB" && v.Index == "Environment" {
			assert.True(t, math.IsNaN(v.IndexScore))
			assert.Empty(t, v.IndexRisk)
		}
	}

	assert.Less(t, lv.Overall.Lower, lv.Overall.Upper)
	assert.Equal(t, "AAA", ss[0].Country.ISO3)
	assert.Equal(t, "CCC", ss[len(ss)-1].Country.ISO3)
}

func TestAggregateEmpty(t *testing.T) {
	f := sdmx.NewFrame("")
	add(f, "XKX", indicator("Outcome", "I", "X"), 5)
	_, _, err := aggregate.Aggregate(f, master(t))
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.AggregateEmptyError, gnErr.Code)
}

func TestJoin(t *testing.T) {
	ind := indicator("Outcome", "Child labour", "Workplace")
	f := sdmx.NewFrame("")
	add(f, "AAA", ind, 3)
	add(f, "BBB", ind, 7)
	add(f, "XKX", ind, 1)

	ss, _, err := aggregate.Aggregate(f, master(t))
	require.NoError(t, err)

	rows := aggregate.Join(f, ss)
	require.Len(t, rows, 3)
	require.NotNil(t, rows[0].Score)
	assert.Equal(t, 3.0, rows[0].Score.CategoryIssueScore)
	assert.Equal(t, 3.0, rows[0].Scaled)
	require.NotNil(t, rows[1].Score)
	assert.Equal(t, 7.0, rows[1].Score.OverallScore)
	assert.Nil(t, rows[2].Score)
}
