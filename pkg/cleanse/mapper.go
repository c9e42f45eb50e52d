// Package cleanse harmonizes raw source tables into canonical frames:
// columns are renamed to the canonical schema, the latest observation of
// every country and dimension group is selected, countries are reconciled
// against the master list and the frame is filled with defaults and
// indicator metadata.
package cleanse

import (
	"database/sql"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

// iso2Quartile is the first-quartile length of an ISO3 column below which
// the column actually holds ISO2 codes.
const iso2Quartile = 2.5

// MapStats describes what the schema mapper did with raw columns.
type MapStats struct {
	// Mapped are canonical columns found in the raw frame.
	Mapped []string

	// Dropped are raw columns without a mapping, or losing a collision.
	Dropped []string

	// RelabeledISO2 is true when ISO3 codes were found to be ISO2 codes.
	RelabeledISO2 bool

	// BadTime counts time cells that could not be parsed.
	BadTime int
}

type mappedCol struct {
	raw       string
	canonical string
	idx       int
}

// Map renames raw columns to canonical names and drops every column
// without a mapping. If two raw columns map to the same canonical column
// the first one wins. A frame without value or time column is not an
// error, its HasValue or HasTime flag stays false.
func Map(
	m *sdmx.ColumnMapping,
	sourceID string,
	raw *sdmx.RawFrame,
) (*sdmx.Frame, MapStats) {
	var stats MapStats
	res := sdmx.NewFrame(sourceID)
	if raw == nil {
		return res, stats
	}

	var cols []mappedCol
	seen := make(map[string]string)
	for i, name := range raw.Header {
		canonical, ok := m.Target(name)
		if !ok {
			stats.Dropped = append(stats.Dropped, name)
			continue
		}
		if prev, ok := seen[canonical]; ok {
			slog.Debug("Column mapping collision",
				"source_id", sourceID,
				"column", canonical,
				"kept", prev,
				"dropped", name,
			)
			stats.Dropped = append(stats.Dropped, name)
			continue
		}
		seen[canonical] = name
		cols = append(cols, mappedCol{raw: name, canonical: canonical, idx: i})
	}

	if relabelISO2(m, raw, cols) {
		for i := range cols {
			if cols[i].canonical == sdmx.ColISO3 {
				cols[i].canonical = sdmx.ColISO2
			}
		}
		stats.RelabeledISO2 = true
		slog.Info("ISO3 column holds ISO2 codes, relabeling",
			"source_id", sourceID,
		)
	}

	for _, c := range cols {
		stats.Mapped = append(stats.Mapped, c.canonical)
		switch sdmx.RoleOf(c.canonical) {
		case sdmx.RoleCountry:
			res.AddCountryCol(c.canonical)
		case sdmx.RoleTime:
			res.HasTime = true
		case sdmx.RoleValue:
			res.HasValue = true
		case sdmx.RoleDimension:
			res.AddDimCol(c.canonical)
		case sdmx.RoleAttribute:
			res.AddAttrCol(c.canonical)
		}
	}
	slices.Sort(stats.Mapped)

	res.Rows = make([]sdmx.Observation, 0, len(raw.Records))
	for _, rec := range raw.Records {
		obs := sdmx.NewObservation()
		for _, c := range cols {
			var cell any
			if c.idx < len(rec) {
				cell = rec[c.idx]
			}
			val, ok := sdmx.CellString(m, cell)
			if !ok {
				continue
			}
			if re := m.Pattern(c.raw); re != nil {
				if sm := re.FindStringSubmatch(val); sm != nil {
					val = sm[1]
				}
			}

			switch sdmx.RoleOf(c.canonical) {
			case sdmx.RoleCountry:
				obs.Country.Set(c.canonical, val)
			case sdmx.RoleTime:
				year, coverage, ok := ParseTimePeriod(val)
				if !ok {
					stats.BadTime++
					continue
				}
				obs.Time = year
				if coverage != "" {
					obs.Attrs[sdmx.ColCoverageTime] = coverage
					res.AddAttrCol(sdmx.ColCoverageTime)
				}
			case sdmx.RoleValue:
				obs.Raw = sql.NullString{String: val, Valid: true}
			case sdmx.RoleDimension:
				obs.Dims[c.canonical] = val
			case sdmx.RoleAttribute:
				obs.Attrs[c.canonical] = val
			}
		}
		res.Rows = append(res.Rows, obs)
	}

	if stats.BadTime > 0 {
		slog.Warn("Time periods without a year",
			"source_id", sourceID,
			"rows", stats.BadTime,
		)
	}
	return res, stats
}

// relabelISO2 checks if the column mapped to ISO3 contains ISO2 codes.
// The first quartile of code lengths is used so that a few malformed
// entries do not change the outcome.
func relabelISO2(
	m *sdmx.ColumnMapping,
	raw *sdmx.RawFrame,
	cols []mappedCol,
) bool {
	iso3 := -1
	for _, c := range cols {
		switch c.canonical {
		case sdmx.ColISO2:
			return false
		case sdmx.ColISO3:
			iso3 = c.idx
		}
	}
	if iso3 < 0 {
		return false
	}

	lens := make([]float64, 0, len(raw.Records))
	for _, rec := range raw.Records {
		if iso3 >= len(rec) {
			continue
		}
		if s, ok := sdmx.CellString(m, rec[iso3]); ok {
			lens = append(lens, float64(utf8.RuneCountInString(s)))
		}
	}
	if len(lens) == 0 {
		return false
	}
	return stat.Quantile(lens, 0.25) < iso2Quartile
}
