package cleanse_test

import (
	"database/sql"
	"testing"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/cleanse"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping(t *testing.T) *sdmx.ColumnMapping {
	m := &sdmx.ColumnMapping{
		Version: sdmx.MappingVersion,
		Columns: map[string]string{
			"REF_AREA":      sdmx.ColISO3,
			"ISO_CODE":      sdmx.ColISO3,
			"Country":       sdmx.ColName,
			"TIME_PERIOD":   sdmx.ColTime,
			"OBS_VALUE":     sdmx.ColRaw,
			"Display Value": sdmx.ColRaw,
			"SEX":           "DIM_SEX",
			"NOTE":          sdmx.ColFootnote,
		},
		Values: map[string]map[string][]string{
			"DIM_SEX": {
				"M": {"male", "Male"},
				"F": {"female"},
			},
		},
		ValuePatterns: map[string]string{
			"Display Value": `^\s*(-?\d+(?:\.\d+)?)`,
		},
		NAValues: []string{"NaN", "No data", "."},
	}
	require.NoError(t, m.Validate())
	return m
}

func testMaster(t *testing.T) *sdmx.CountryList {
	res, err := sdmx.NewCountryList([]sdmx.Country{
		{ISO2: "DE", ISO3: "DEU", Name: "Germany"},
		{ISO2: "FR", ISO3: "FRA", Name: "France"},
		{ISO2: "NE", ISO3: "NER", Name: "Niger"},
		{ISO2: "NG", ISO3: "NGA", Name: "Nigeria"},
	})
	require.NoError(t, err)
	return res
}

func testVariants(t *testing.T) *sdmx.Variants {
	res, err := sdmx.NewVariants([]sdmx.Country{
		{ISO2: "DE", ISO3: "DEU", Name: "Germany"},
		{ISO2: "DE", ISO3: "DEU", Name: "Federal Republic of Germany"},
		{ISO2: "FR", ISO3: "FRA", Name: "France"},
		{ISO2: "NE", ISO3: "NER", Name: "Niger"},
		{ISO2: "NG", ISO3: "NGA", Name: "Nigeria"},
		{ISO2: "AT", ISO3: "AUT", Name: "Austria"},
	})
	require.NoError(t, err)
	return res
}

func codeOf(t *testing.T, err error) gn.ErrorCode {
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "error should be *gn.Error")
	return gnErr.Code
}

func sourceOf(t *testing.T, err error) any {
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "error should be *gn.Error")
	require.NotEmpty(t, gnErr.Vars)
	return gnErr.Vars[0]
}

func obs(iso3 string, year int, raw any, dims ...string) sdmx.Observation {
	res := sdmx.NewObservation()
	res.Country.ISO3 = iso3
	res.Time = year
	if s, ok := raw.(string); ok {
		res.Raw = sql.NullString{String: s, Valid: true}
	}
	for i := 0; i+1 < len(dims); i += 2 {
		res.Dims[dims[i]] = dims[i+1]
	}
	return res
}

func iso3Frame(rows ...sdmx.Observation) *sdmx.Frame {
	f := sdmx.NewFrame("S-1")
	f.CountryCols = []string{sdmx.ColISO3}
	f.HasTime = true
	f.HasValue = true
	f.Rows = rows
	return f
}

func TestParseTimePeriod(t *testing.T) {
	tests := []struct {
		msg, s   string
		year     int
		coverage string
		ok       bool
	}{
		{"year", "2019", 2019, "", true},
		{"float year", "2019.0", 2019, "", true},
		{"date", "2018-05-01", 2018, "", true},
		{"period", "2012 - 2014", 2013, "2012 - 2014", true},
		{"period no spaces", "2014-2017", 2015, "2014-2017", true},
		{"text", "RGI 2017", 0, "", false},
		{"empty", "", 0, "", false},
	}
	for _, v := range tests {
		year, coverage, ok := cleanse.ParseTimePeriod(v.s)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.year, year, v.msg)
		assert.Equal(t, v.coverage, coverage, v.msg)
	}
}

func TestMap(t *testing.T) {
	m := testMapping(t)

	t.Run("rename and drop", func(t *testing.T) {
		raw := &sdmx.RawFrame{
			Header: []string{"REF_AREA", "TIME_PERIOD", "OBS_VALUE", "SEX", "NOTE", "junk"},
			Records: [][]any{
				{"DEU", "2019", 5.0, "male", "est.", "x"},
				{"DEU", 2020, "7", []any{"female"}, nil, "y"},
				{"FRA", "2012 - 2014", "NaN", "_T", ".", "z"},
			},
		}
		f, stats := cleanse.Map(m, "S-1", raw)
		assert.Equal(t, "S-1", f.SourceID)
		assert.Equal(t, []string{"junk"}, stats.Dropped)
		assert.False(t, stats.RelabeledISO2)
		assert.True(t, f.HasTime)
		assert.True(t, f.HasValue)
		assert.Equal(t, []string{sdmx.ColISO3}, f.CountryCols)
		assert.Equal(t, []string{"DIM_SEX"}, f.DimCols)
		assert.Equal(t,
			[]string{sdmx.ColCoverageTime, sdmx.ColFootnote}, f.AttrCols)
		require.Equal(t, 3, f.Len())

		r := f.Rows[0]
		assert.Equal(t, "DEU", r.Country.ISO3)
		assert.Equal(t, 2019, r.Time)
		assert.Equal(t, "5", r.Raw.String)
		assert.Equal(t, "male", r.Dims["DIM_SEX"])
		assert.Equal(t, "est.", r.Attrs[sdmx.ColFootnote])

		r = f.Rows[1]
		assert.Equal(t, 2020, r.Time)
		assert.Equal(t, "female", r.Dims["DIM_SEX"])
		assert.NotContains(t, r.Attrs, sdmx.ColFootnote)

		r = f.Rows[2]
		assert.Equal(t, 2013, r.Time)
		assert.Equal(t, "2012 - 2014", r.Attrs[sdmx.ColCoverageTime])
		assert.False(t, r.Raw.Valid)
		assert.NotContains(t, r.Attrs, sdmx.ColFootnote)
	})

	t.Run("iso2 codes in iso3 column", func(t *testing.T) {
		raw := &sdmx.RawFrame{
			Header:  []string{"REF_AREA", "OBS_VALUE"},
			Records: [][]any{{"DE", 1}, {"FR", 2}, {"NER", 3}},
		}
		f, stats := cleanse.Map(m, "S-2", raw)
		assert.True(t, stats.RelabeledISO2)
		assert.Equal(t, []string{sdmx.ColISO2}, f.CountryCols)
		assert.Equal(t, "DE", f.Rows[0].Country.ISO2)
		assert.Empty(t, f.Rows[0].Country.ISO3)
	})

	t.Run("first column wins", func(t *testing.T) {
		raw := &sdmx.RawFrame{
			Header:  []string{"ISO_CODE", "REF_AREA", "OBS_VALUE"},
			Records: [][]any{{"DEU", "XXX", 1}},
		}
		f, stats := cleanse.Map(m, "S-3", raw)
		assert.Equal(t, []string{"REF_AREA"}, stats.Dropped)
		assert.Equal(t, "DEU", f.Rows[0].Country.ISO3)
	})

	t.Run("display values", func(t *testing.T) {
		raw := &sdmx.RawFrame{
			Header: []string{"Country", "Display Value"},
			Records: [][]any{
				{"Germany", "13.57 [10.33 - 15.5]"},
				{"France", "No data"},
				{"Niger"},
			},
		}
		f, _ := cleanse.Map(m, "S-4", raw)
		assert.Equal(t, "13.57", f.Rows[0].Raw.String)
		assert.False(t, f.Rows[1].Raw.Valid)
		assert.False(t, f.Rows[2].Raw.Valid)
		assert.False(t, f.HasTime)
	})

	t.Run("no value column", func(t *testing.T) {
		raw := &sdmx.RawFrame{
			Header:  []string{"REF_AREA", "junk"},
			Records: [][]any{{"DEU", 1}},
		}
		f, _ := cleanse.Map(m, "S-5", raw)
		assert.False(t, f.HasValue)
		assert.False(t, f.HasTime)
		assert.Equal(t, 1, f.Len())
	})

	t.Run("nil frame", func(t *testing.T) {
		f, _ := cleanse.Map(m, "S-6", nil)
		assert.Equal(t, 0, f.Len())
	})
}

func TestLatest(t *testing.T) {
	t.Run("most recent wins", func(t *testing.T) {
		f := iso3Frame(
			obs("DEU", 2019, "5"),
			obs("DEU", 2020, "7"),
			obs("FRA", 2021, nil),
			obs("FRA", 2018, "3"),
		)
		res, stats, err := cleanse.Latest(f)
		require.NoError(t, err)
		require.Equal(t, 2, res.Len())
		assert.Equal(t, 2020, res.Rows[0].Time)
		assert.Equal(t, "7", res.Rows[0].Raw.String)
		assert.Equal(t, "FRA", res.Rows[1].Country.ISO3)
		assert.Equal(t, 2018, res.Rows[1].Time)
		assert.Equal(t, 1, stats.NoValue)
		assert.Equal(t, 1, stats.Older)
		assert.Equal(t, 4, f.Len(), "input is unchanged")
	})

	t.Run("dimension groups", func(t *testing.T) {
		f := iso3Frame(
			obs("DEU", 2019, "5", "DIM_SEX", "M"),
			obs("DEU", 2017, "4", "DIM_SEX", "F"),
			obs("DEU", 2015, "3", "DIM_SEX", "F"),
		)
		f.DimCols = []string{"DIM_SEX"}
		res, _, err := cleanse.Latest(f)
		require.NoError(t, err)
		require.Equal(t, 2, res.Len())
		assert.Equal(t, 2019, res.Rows[0].Time)
		assert.Equal(t, 2017, res.Rows[1].Time)
	})

	t.Run("unique composite key", func(t *testing.T) {
		f := iso3Frame(
			obs("DEU", 2020, "7"),
			obs("DEU", 2020, "7"),
			obs("FRA", 2020, "1"),
		)
		res, stats, err := cleanse.Latest(f)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
		assert.Equal(t, 1, stats.Collapsed)

		seen := make(map[string]bool)
		for _, v := range res.Rows {
			k := v.Key(res.CountryCols, res.DimCols)
			assert.False(t, seen[k])
			seen[k] = true
		}
	})

	t.Run("conflicting observations", func(t *testing.T) {
		f := iso3Frame(obs("DEU", 2020, "7"), obs("DEU", 2020, "8"))
		_, _, err := cleanse.Latest(f)
		require.Error(t, err)
		assert.Equal(t, errcode.CleanseDuplicateObservationError, codeOf(t, err))
		assert.Equal(t, "S-1", sourceOf(t, err))
	})

	t.Run("rows without time", func(t *testing.T) {
		f := iso3Frame(obs("DEU", 0, "7"), obs("FRA", 2020, "8"))
		res, stats, err := cleanse.Latest(f)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
		assert.Equal(t, 1, stats.NoTime)

		f.HasTime = false
		f.Rows = []sdmx.Observation{obs("DEU", 0, "7"), obs("FRA", 0, "8")}
		res, _, err = cleanse.Latest(f)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
	})
}

func TestDetectCountryKey(t *testing.T) {
	master := testMaster(t)
	tests := []struct {
		msg  string
		cols []string
		key  sdmx.CountryKey
		code gn.ErrorCode
	}{
		{"iso3", []string{sdmx.ColISO3}, sdmx.KeyISO3, 0},
		{"iso2", []string{sdmx.ColISO2}, sdmx.KeyISO2, 0},
		{"name", []string{sdmx.ColName}, sdmx.KeyName, 0},
		{"iso3 preferred", []string{sdmx.ColName, sdmx.ColISO3}, sdmx.KeyISO3, 0},
		{"none", nil, sdmx.KeyUnknown, errcode.ReconcileMissingColumnError},
	}
	for _, v := range tests {
		f := sdmx.NewFrame("S-1")
		f.CountryCols = v.cols
		key, err := cleanse.DetectCountryKey(f, master)
		if v.code != 0 {
			require.Error(t, err, v.msg)
			assert.Equal(t, v.code, codeOf(t, err), v.msg)
			continue
		}
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.key, key, v.msg)
	}

	t.Run("ambiguous median", func(t *testing.T) {
		odd, err := sdmx.NewCountryList([]sdmx.Country{
			{ISO2: "A", ISO3: "AAA", Name: "Aaaa"},
			{ISO2: "BB", ISO3: "BBB", Name: "Bbbb"},
		})
		require.NoError(t, err)
		f := sdmx.NewFrame("S-9")
		f.CountryCols = []string{sdmx.ColISO2}
		_, err = cleanse.DetectCountryKey(f, odd)
		require.Error(t, err)
		assert.Equal(t, errcode.ReconcileCountryKeyError, codeOf(t, err))
		assert.Equal(t, "S-9", sourceOf(t, err))
	})

	t.Run("short names", func(t *testing.T) {
		odd, err := sdmx.NewCountryList([]sdmx.Country{
			{ISO2: "AA", ISO3: "AAA", Name: "Aa"},
			{ISO2: "BB", ISO3: "BBB", Name: "Bb"},
		})
		require.NoError(t, err)
		f := sdmx.NewFrame("S-9")
		f.CountryCols = []string{sdmx.ColName}
		_, err = cleanse.DetectCountryKey(f, odd)
		require.Error(t, err)
		assert.Equal(t, errcode.ReconcileCountryKeyError, codeOf(t, err))
	})
}

func TestReconcile(t *testing.T) {
	master := testMaster(t)
	variants := testVariants(t)

	t.Run("iso3 completeness", func(t *testing.T) {
		f := iso3Frame(
			obs("DEU", 2020, "7"),
			obs("usa", 2020, "1"),
			obs(" fra ", 2020, "2"),
		)
		res, stats, err := cleanse.Reconcile(f, sdmx.KeyUnknown, variants, master)
		require.NoError(t, err)
		assert.Equal(t, sdmx.KeyISO3, stats.Key)
		assert.Equal(t, 2, stats.Matched)
		assert.Equal(t, 1, stats.Discarded)
		assert.Equal(t, 2, stats.Padded)
		require.Equal(t, master.Len(), res.Len())

		counts := make(map[string]int)
		for i, v := range res.Rows {
			assert.Equal(t, master.Countries()[i], v.Country)
			counts[v.Country.ISO3]++
		}
		for _, v := range master.Countries() {
			assert.Equal(t, 1, counts[v.ISO3], v.ISO3)
		}
		assert.Equal(t, "7", res.Rows[0].Raw.String)
		assert.Equal(t, "2", res.Rows[1].Raw.String)
		assert.False(t, res.Rows[2].Raw.Valid)
		assert.Equal(t, sdmx.ObsStatusMissing, res.Rows[2].ObsStatus)
	})

	t.Run("names through variants", func(t *testing.T) {
		f := sdmx.NewFrame("S-2")
		f.CountryCols = []string{sdmx.ColName}
		f.DimCols = []string{"DIM_SEX"}
		rows := []struct{ name, sex, raw string }{
			{" Federal Republic of Germany ", "F", "1"},
			{"Federal Republic of Germany", "M", "2"},
			{"Austria", "_T", "3"},
			{"Atlantis", "_T", "4"},
		}
		for _, v := range rows {
			o := obs("", 2020, v.raw, "DIM_SEX", v.sex)
			o.Country.Name = v.name
			f.Rows = append(f.Rows, o)
		}
		res, stats, err := cleanse.Reconcile(f, sdmx.KeyName, variants, master)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Unmatched)
		assert.Equal(t, 1, stats.Discarded)
		assert.Equal(t, 3, stats.Padded)
		require.Equal(t, 5, res.Len())
		assert.Equal(t, "DEU", res.Rows[0].Country.ISO3)
		assert.Equal(t, "Germany", res.Rows[0].Country.Name)
		assert.Equal(t, "DE", res.Rows[1].Country.ISO2)
		assert.Equal(t, sdmx.Total, res.Rows[2].Dims["DIM_SEX"])
		assert.Equal(t, sdmx.CountryColumns, res.CountryCols)
	})

	t.Run("iso2 gets iso3", func(t *testing.T) {
		f := sdmx.NewFrame("S-3")
		f.CountryCols = []string{sdmx.ColISO2}
		o := obs("", 2020, "1")
		o.Country.ISO2 = "ng"
		f.Rows = append(f.Rows, o)
		res, _, err := cleanse.Reconcile(f, sdmx.KeyISO2, nil, master)
		require.NoError(t, err)
		assert.Equal(t, "NGA", res.Rows[3].Country.ISO3)
		assert.True(t, res.Rows[3].Raw.Valid)
	})

	t.Run("explicit key without column", func(t *testing.T) {
		f := iso3Frame(obs("DEU", 2020, "7"))
		_, _, err := cleanse.Reconcile(f, sdmx.KeyName, variants, master)
		require.Error(t, err)
		assert.Equal(t, errcode.ReconcileMissingColumnError, codeOf(t, err))
	})
}

func TestFill(t *testing.T) {
	rc := sdmx.NewRunContext(config.RunConfig{Year: 2023, RecencyYears: 10})
	f := iso3Frame(
		obs("DEU", 2020, "7", "DIM_SEX", "M"),
		obs("FRA", 0, nil),
	)
	f.DimCols = []string{"DIM_AGE", "DIM_SEX"}
	ind := sdmx.Indicator{Code: "CR-1", Name: "Child labour"}

	res := cleanse.Fill(rc, f, ind)
	assert.True(t, res.HasTime)
	require.NotNil(t, res.Indicator)
	assert.Equal(t, 2023, res.Indicator.ReleaseYear)
	assert.Equal(t, 0, ind.ReleaseYear)

	r := res.Rows[0]
	assert.Equal(t, 2020, r.Time)
	assert.Equal(t, "M", r.Dims["DIM_SEX"])
	assert.Equal(t, sdmx.Total, r.Dims["DIM_AGE"])
	assert.Equal(t, "S-1", r.SourceID)
	assert.Equal(t, "CR-1", r.Indicator.Code)

	r = res.Rows[1]
	assert.Equal(t, 2023, r.Time)
	assert.Equal(t, sdmx.Total, r.Dims["DIM_SEX"])
	assert.Same(t, res.Indicator, r.Indicator)
}

func TestMapValues(t *testing.T) {
	m := testMapping(t)
	f := iso3Frame(
		obs("DEU", 2020, "1", "DIM_SEX", "Male"),
		obs("DEU", 2020, "2", "DIM_SEX", "female"),
		obs("DEU", 2020, "3", "DIM_SEX", "_T"),
		obs("DEU", 2020, "4", "DIM_SEX", "both"),
		obs("DEU", 2020, "5"),
	)
	f.DimCols = []string{"DIM_SEX"}

	res, stats := cleanse.MapValues(m, f)
	var sex []string
	for _, v := range res.Rows {
		sex = append(sex, v.Dims["DIM_SEX"])
	}
	assert.Equal(t,
		[]string{"M", "F", sdmx.Total, cleanse.UnmappedValue, sdmx.Total}, sex)
	assert.Equal(t, 1, stats.Unmapped["DIM_SEX"])
	assert.Equal(t, 4, stats.Mapped["DIM_SEX"])
	assert.Equal(t, "Male", f.Rows[0].Dims["DIM_SEX"], "input is unchanged")

	t.Run("absent column is skipped", func(t *testing.T) {
		f := iso3Frame(obs("DEU", 2020, "1"))
		res, stats := cleanse.MapValues(m, f)
		assert.Empty(t, res.Rows[0].Dims)
		assert.Empty(t, stats.Unmapped)
	})
}

func TestReport(t *testing.T) {
	f := iso3Frame(
		obs("DEU", 2020, "7"),
		obs("DEU", 2020, "7"),
		obs("FRA", 2015, nil),
		obs("NER", 2018, "1"),
	)
	res, sum := cleanse.Report(f)
	assert.Equal(t, 3, res.Len())
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Equal(t, 2015, sum.MinTime)
	assert.Equal(t, 2020, sum.MaxTime)
	assert.InDelta(t, 0.3333, sum.NAShare, 0.0001)
}

func TestDecomposeFootnote(t *testing.T) {
	f := sdmx.NewFrame("S-ILO")
	f.CountryCols = []string{sdmx.ColName}
	cells := []string{
		"Nigeria (ratified with declaration)",
		"Niger",
		"Atlantis",
	}
	for _, v := range cells {
		o := obs("", 2020, nil)
		o.Country.Name = v
		f.Rows = append(f.Rows, o)
	}
	names := testVariants(t).Names()

	res := cleanse.DecomposeFootnote(f, names)
	assert.Equal(t, "Nigeria", res.Rows[0].Country.Name)
	assert.Equal(t, "(ratified with declaration)", res.Rows[0].Attrs[sdmx.ColFootnote])
	assert.Equal(t, "Niger", res.Rows[1].Country.Name)
	assert.NotContains(t, res.Rows[1].Attrs, sdmx.ColFootnote)
	assert.Empty(t, res.Rows[2].Country.Name)
	assert.Equal(t, "Atlantis", res.Rows[2].Attrs[sdmx.ColFootnote])
	assert.Contains(t, res.AttrCols, sdmx.ColFootnote)
}

func TestStripFootnoteNumbers(t *testing.T) {
	tests := []struct {
		msg  string
		cell string
		name string
	}{
		{"no footnote", "Germany", "Germany"},
		{"one footnote", "France 4", "France"},
		{"several footnotes", "Germany 2, 3", "Germany"},
		{"text after number", "Niger 7 (declaration)", "Niger"},
		{"digits inside name", "Area51", "Area51"},
	}

	f := sdmx.NewFrame("S-UN")
	f.CountryCols = []string{sdmx.ColName}
	for _, v := range tests {
		o := obs("", 0, "12 Jan 1990")
		o.Country.Name = v.cell
		f.Rows = append(f.Rows, o)
	}

	res := cleanse.StripFootnoteNumbers(f)
	for i, v := range tests {
		assert.Equal(t, v.name, res.Rows[i].Country.Name, v.msg)
	}
	assert.Equal(t, "Germany 2, 3", f.Rows[2].Country.Name, "input is not changed")
}
