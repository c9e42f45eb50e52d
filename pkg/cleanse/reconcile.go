package cleanse

import (
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

// ReconcileStats describes the outcome of country reconciliation.
type ReconcileStats struct {
	// Key is the country identifier used for the join.
	Key sdmx.CountryKey

	// Matched rows belong to a master list country.
	Matched int

	// Unmatched rows have a country name without a known variant.
	Unmatched int

	// Discarded rows belong to countries outside of the master list.
	Discarded int

	// Padded countries had no data and got an empty row.
	Padded int
}

// DetectCountryKey finds out what kind of country identifier a frame
// uses. Present country columns are tried in order ISO3, ISO2, Name. The
// kind is decided by the median length of the same column of the master
// list: up to 1.5 is invalid, between 1.5 and 3.5 is an ISO code and
// above 3.5 is a name. A median exactly on a boundary is ambiguous. All
// failures are ReconcileError.
func DetectCountryKey(
	f *sdmx.Frame,
	master *sdmx.CountryList,
) (sdmx.CountryKey, error) {
	var col string
	for _, v := range sdmx.CountryColumns {
		if f.HasCountryCol(v) {
			col = v
			break
		}
	}
	if col == "" {
		return sdmx.KeyUnknown, MissingCountryColumnError(f.SourceID, "")
	}

	codes := master.Column(col)
	lens := make([]float64, 0, len(codes))
	for _, v := range codes {
		lens = append(lens, float64(utf8.RuneCountInString(v)))
	}
	med := stat.Median(lens)

	var isName bool
	switch {
	case med < 1.5:
		return sdmx.KeyUnknown, ReconcileError(f.SourceID,
			fmt.Errorf("median length %.1f of %s is too short", med, col))
	case med == 1.5 || med == 3.5:
		return sdmx.KeyUnknown, ReconcileError(f.SourceID,
			fmt.Errorf("median length %.1f of %s is ambiguous", med, col))
	case med > 3.5:
		isName = true
	}

	key := sdmx.KeyOfColumn(col)
	if isName != (key == sdmx.KeyName) {
		return sdmx.KeyUnknown, ReconcileError(f.SourceID,
			fmt.Errorf("median length %.1f does not fit column %s", med, col))
	}
	return key, nil
}

// Reconcile joins a frame onto the master country list. Every master
// country is present in the result: countries with data keep their rows,
// countries without data get one row with a missing raw value and total
// dimensions. Rows of countries outside of the master list are dropped.
// All rows get the ISO2, ISO3 and name of the master list entry.
//
// An unknown key is detected with DetectCountryKey. Names are matched
// through the variants table after trimming and Unicode normalization.
func Reconcile(
	f *sdmx.Frame,
	key sdmx.CountryKey,
	variants *sdmx.Variants,
	master *sdmx.CountryList,
) (*sdmx.Frame, ReconcileStats, error) {
	var stats ReconcileStats
	var err error
	if key == sdmx.KeyUnknown {
		key, err = DetectCountryKey(f, master)
		if err != nil {
			return nil, stats, err
		}
	} else if !f.HasCountryCol(key.Column()) {
		return nil, stats, MissingCountryColumnError(f.SourceID, key.Column())
	}
	stats.Key = key

	if key == sdmx.KeyName && variants == nil {
		return nil, stats, ReconcileError(f.SourceID,
			fmt.Errorf("names cannot be matched without variants"))
	}

	byISO3 := make(map[string][]sdmx.Observation)
	var unmatched []string
	for _, v := range f.Rows {
		val := v.Country.Get(key.Column())
		var c sdmx.Country
		var ok bool
		switch key {
		case sdmx.KeyName:
			c, ok = variants.Lookup(val)
			if !ok {
				stats.Unmatched++
				if val != "" && !slices.Contains(unmatched, val) {
					unmatched = append(unmatched, val)
				}
				continue
			}
			c, ok = master.ByISO3(c.ISO3)
		default:
			c, ok = master.Lookup(key, strings.ToUpper(strings.TrimSpace(val)))
		}
		if !ok {
			stats.Discarded++
			continue
		}
		stats.Matched++
		byISO3[c.ISO3] = append(byISO3[c.ISO3], v)
	}

	res := f.CloneEmpty()
	res.CountryCols = slices.Clone(sdmx.CountryColumns)
	res.Rows = make([]sdmx.Observation, 0, master.Len())
	for _, c := range master.Countries() {
		rows, ok := byISO3[c.ISO3]
		if !ok {
			stats.Padded++
			res.Rows = append(res.Rows, paddingRow(res, c))
			continue
		}
		for _, v := range rows {
			row := v.Clone()
			row.Country = c
			res.Rows = append(res.Rows, row)
		}
	}

	if len(unmatched) > 0 {
		slog.Warn("Country names without a known variant",
			"source_id", f.SourceID,
			"rows", stats.Unmatched,
			"names", unmatched,
		)
	}
	slog.Debug("Countries reconciled",
		"source_id", f.SourceID,
		"key", key.String(),
		"matched", stats.Matched,
		"discarded", stats.Discarded,
		"padded", stats.Padded,
	)
	return res, stats, nil
}

func paddingRow(f *sdmx.Frame, c sdmx.Country) sdmx.Observation {
	res := sdmx.NewObservation()
	res.Country = c
	res.Raw = sql.NullString{}
	res.ObsStatus = sdmx.ObsStatusMissing
	for _, v := range f.DimCols {
		res.Dims[v] = sdmx.Total
	}
	return res
}
