package pipeline_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/iofs"
	"github.com/m-g-d-c/crba-etl/pkg/cleanse"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func reference(t *testing.T) *pipeline.Reference {
	m := &sdmx.ColumnMapping{
		Version: sdmx.MappingVersion,
		Columns: map[string]string{
			"REF_AREA":     sdmx.ColISO3,
			"Country":      sdmx.ColName,
			"TIME_PERIOD":  sdmx.ColTime,
			"OBS_VALUE":    sdmx.ColRaw,
			"Ratification": sdmx.ColRaw,
			"SEX":          "DIM_SEX",
		},
		Values: map[string]map[string][]string{
			"DIM_SEX": {"M": {"male"}, "F": {"female"}},
		},
		NAValues: []string{"NaN", "No data"},
	}
	require.NoError(t, m.Validate())

	cc := []sdmx.Country{
		{ISO2: "DE", ISO3: "DEU", Name: "Germany"},
		{ISO2: "FR", ISO3: "FRA", Name: "France"},
		{ISO2: "NE", ISO3: "NER", Name: "Niger"},
		{ISO2: "NG", ISO3: "NGA", Name: "Nigeria"},
	}
	master, err := sdmx.NewCountryList(cc)
	require.NoError(t, err)
	variants, err := sdmx.NewVariants(cc)
	require.NoError(t, err)

	return &pipeline.Reference{
		Countries: master,
		Variants:  variants,
		Mapping:   m,
	}
}

// defaultReference uses the column mapping shipped with crba.
func defaultReference(t *testing.T) *pipeline.Reference {
	res := reference(t)
	var m sdmx.ColumnMapping
	require.NoError(t, yaml.Unmarshal([]byte(iofs.ColumnsYAML), &m))
	require.NoError(t, m.Validate())
	res.Mapping = &m
	return res
}

func runContext() *sdmx.RunContext {
	cfg := config.New()
	cfg.Run.Year = 2021
	return sdmx.NewRunContext(cfg.Run)
}

func source() *sources.SourceConfig {
	return &sources.SourceConfig{
		ID:              "S-7",
		File:            "S-7.csv",
		Code:            "CR_7",
		Name:            "Children in employment",
		Index:           "Workplace",
		Issue:           "Child labour",
		Category:        "Outcome",
		VariableType:    "Continuous variable",
		DimensionFilter: `DIM_SEX == "_T"`,
		CountryKey:      sdmx.KeyISO3,
	}
}

func find(f *sdmx.Frame, iso3, sex string) *sdmx.Observation {
	for i := range f.Rows {
		v := &f.Rows[i]
		if v.Country.ISO3 == iso3 && v.Dims["DIM_SEX"] == sex {
			return v
		}
	}
	return nil
}

func TestProcess(t *testing.T) {
	raw := &sdmx.RawFrame{
		Header: []string{"REF_AREA", "TIME_PERIOD", "OBS_VALUE", "SEX", "EXTRA"},
		Records: [][]any{
			{"DEU", "2019", "10", "_T", "x"},
			{"DEU", "2015", "5", "_T", "x"},
			{"FRA", "2020", 20.0, "_T", "x"},
			{"FRA", "2020", "12", "male", "x"},
			{"NER", "2020", "30", "_T", "x"},
			{"USA", "2020", "40", "_T", "x"},
			{"NGA", "2020", "No data", "_T", "x"},
		},
	}

	res, err := pipeline.Process(runContext(), source(), raw, reference(t))
	require.NoError(t, err)
	assert.Equal(t, "S-7", res.SourceID)

	st := res.Stats
	assert.Equal(t, 7, st.RawRows)
	assert.Equal(t, []string{"EXTRA"}, st.Dropped)
	assert.Equal(t, 1, st.NoValue)
	assert.Equal(t, 1, st.Older)
	assert.Equal(t, "iso3", st.CountryKey)
	assert.Equal(t, 1, st.Discarded)
	assert.Equal(t, 1, st.Padded)
	assert.Equal(t, 3, st.Normalization.Scored)

	f := res.Frame
	require.NotNil(t, f)
	require.NotNil(t, f.Indicator)
	assert.Equal(t, 2021, f.Indicator.ReleaseYear)
	assert.Equal(t, "Child labour", f.Indicator.Issue)

	deu := find(f, "DEU", sdmx.Total)
	require.NotNil(t, deu)
	assert.Equal(t, "Germany", deu.Country.Name)
	assert.Equal(t, 2019, deu.Time)
	assert.Equal(t, 0.0, deu.Scaled)

	fra := find(f, "FRA", sdmx.Total)
	require.NotNil(t, fra)
	assert.Equal(t, 5.0, fra.Scaled)

	male := find(f, "FRA", "M")
	require.NotNil(t, male)
	assert.True(t, math.IsNaN(male.Scaled), "outside of the slice")

	ner := find(f, "NER", sdmx.Total)
	require.NotNil(t, ner)
	assert.Equal(t, 10.0, ner.Scaled)

	nga := find(f, "NGA", sdmx.Total)
	require.NotNil(t, nga)
	assert.False(t, nga.Raw.Valid)
	assert.True(t, math.IsNaN(nga.Scaled))
	assert.Equal(t, sdmx.ObsStatusMissing, nga.ObsStatus)
	assert.Equal(t, 2021, nga.Time)
}

func TestProcessTreaty(t *testing.T) {
	src := &sources.SourceConfig{
		ID:         "S-80",
		File:       "S-80.csv",
		Code:       "CR_TR_80",
		Category:   "Legal framework",
		TreatyBody: "UN Treaties",
	}
	raw := &sdmx.RawFrame{
		Header: []string{"Country", "Ratification"},
		Records: [][]any{
			{"Germany", "[12 Jan 1990 a]"},
			{"France", nil},
			{"Niger", "30 Sep 1990"},
		},
	}

	res, err := pipeline.Process(runContext(), src, raw, reference(t))
	require.NoError(t, err)
	assert.Equal(t, "name", res.Stats.CountryKey)
	assert.False(t, res.Stats.Normalization.Continuous)

	f := res.Frame
	require.Len(t, f.Rows, 4)
	deu := find(f, "DEU", "")
	require.NotNil(t, deu)
	assert.Equal(t, "2", deu.Raw.String)
	assert.Equal(t, "12 Jan 1990", deu.Attrs[sdmx.ColRatificationDate])
	assert.Equal(t, "a", deu.Attrs[sdmx.ColRatificationDetails])
	assert.Equal(t, 10.0, deu.Scaled)

	fra := find(f, "FRA", "")
	require.NotNil(t, fra)
	assert.Equal(t, "1", fra.Raw.String)
	assert.Equal(t, 0.0, fra.Scaled)
}

func TestProcessTreatyDefaultMapping(t *testing.T) {
	tests := []struct {
		msg       string
		body      string
		footnotes bool
		header    []string
		records   [][]any
	}{
		{
			msg:    "UN treaty with footnote numbers",
			body:   "UN Treaties",
			header: []string{"Country", "Ratification, Acceptance(A), Approval(AA), Accession(a), Succession(d)"},
			records: [][]any{
				{"Germany 2, 3", "12 Jan 1990"},
				{"France", ""},
			},
		},
		{
			msg:       "ILO convention status",
			body:      "ILO NORMLEX",
			footnotes: true,
			header:    []string{"Country", "Status"},
			records: [][]any{
				{"Germany", "In Force"},
				{"France", "Not in force"},
			},
		},
	}

	for _, v := range tests {
		src := &sources.SourceConfig{
			ID:         "S-81",
			File:       "S-81.csv",
			Code:       "CR_TR_81",
			Category:   "Legal framework",
			TreatyBody: v.body,
			CountryKey: sdmx.KeyName,
			Footnotes:  v.footnotes,
		}
		raw := &sdmx.RawFrame{Header: v.header, Records: v.records}

		res, err := pipeline.Process(runContext(), src, raw, defaultReference(t))
		require.NoError(t, err, v.msg)
		assert.Zero(t, res.Stats.NoValue, v.msg)
		assert.Zero(t, res.Stats.Unmatched, v.msg)
		assert.Equal(t, 2, res.Stats.Padded, v.msg)

		f := res.Frame
		require.Len(t, f.Rows, 4, v.msg)
		deu := find(f, "DEU", "")
		require.NotNil(t, deu, v.msg)
		assert.Equal(t, "Germany", deu.Country.Name, v.msg)
		assert.Equal(t, "2", deu.Raw.String, v.msg)
		assert.Equal(t, 10.0, deu.Scaled, v.msg)

		fra := find(f, "FRA", "")
		require.NotNil(t, fra, v.msg)
		assert.Equal(t, "1", fra.Raw.String, v.msg)
		assert.Equal(t, 0.0, fra.Scaled, v.msg)
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		msg    string
		modify func(*sources.SourceConfig)
		raw    *sdmx.RawFrame
		code   gn.ErrorCode
	}{
		{
			msg:    "missing country column",
			modify: func(s *sources.SourceConfig) { s.CountryKey = sdmx.KeyISO2 },
			raw: &sdmx.RawFrame{
				Header:  []string{"REF_AREA", "OBS_VALUE"},
				Records: [][]any{{"DEU", "1"}},
			},
			code: errcode.ReconcileMissingColumnError,
		},
		{
			msg:    "conflicting observations",
			modify: func(*sources.SourceConfig) {},
			raw: &sdmx.RawFrame{
				Header:  []string{"REF_AREA", "TIME_PERIOD", "OBS_VALUE"},
				Records: [][]any{{"DEU", "2020", "1"}, {"DEU", "2020", "2"}},
			},
			code: errcode.CleanseDuplicateObservationError,
		},
		{
			msg:    "bad inversion",
			modify: func(s *sources.SourceConfig) { s.Inverted = "upside down" },
			raw: &sdmx.RawFrame{
				Header:  []string{"REF_AREA", "TIME_PERIOD", "OBS_VALUE"},
				Records: [][]any{{"DEU", "2020", "1"}, {"FRA", "2020", "2"}},
			},
			code: errcode.NormalizeInversionFlagError,
		},
	}

	for _, v := range tests {
		src := source()
		v.modify(src)
		res, err := pipeline.Process(runContext(), src, v.raw, reference(t))
		require.Error(t, err, v.msg)
		assert.Nil(t, res.Frame, v.msg)
		assert.Equal(t, "S-7", pipeline.SourceID(err), v.msg)

		gnErr, ok := err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, errcode.RunSourceError, gnErr.Code, v.msg)

		var inner *gn.Error
		require.True(t, errors.As(gnErr.Err, &inner), v.msg)
		assert.Equal(t, v.code, inner.Code, v.msg)
	}
}

func TestSourceID(t *testing.T) {
	assert.Empty(t, pipeline.SourceID(errors.New("plain")))
	assert.Empty(t, pipeline.SourceID(cleanse.ReconcileError("S-1", errors.New("x"))))
	assert.Equal(t, "S-1",
		pipeline.SourceID(pipeline.SourceError("S-1", errors.New("x"))))
}
