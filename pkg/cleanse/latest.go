package cleanse

import (
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// LatestStats counts rows removed by the selector.
type LatestStats struct {
	// NoValue rows had no raw value.
	NoValue int

	// NoTime rows had no time period in a frame with a time column.
	NoTime int

	// Older rows were superseded by a more recent observation.
	Older int

	// Collapsed rows were exact repeats of a kept observation.
	Collapsed int
}

// Latest keeps only the most recent observation of every group of rows
// sharing country and dimension values. Rows without a raw value are
// dropped first, so padding rows never count as the latest observation.
// Without a time column all rows with values survive.
//
// After selection (country, dimensions, time) is unique. Repeated rows
// with the same raw value are collapsed into one, rows with different
// values return DuplicateObservationError.
func Latest(f *sdmx.Frame) (*sdmx.Frame, LatestStats, error) {
	var stats LatestStats
	res := f.CloneEmpty()

	rows := make([]sdmx.Observation, 0, len(f.Rows))
	for _, v := range f.Rows {
		if !v.Raw.Valid {
			stats.NoValue++
			continue
		}
		if f.HasTime && v.Time == 0 {
			stats.NoTime++
			continue
		}
		rows = append(rows, v)
	}

	latest := make(map[string]int)
	for _, v := range rows {
		k := v.Key(f.CountryCols, f.DimCols)
		if t, ok := latest[k]; !ok || v.Time > t {
			latest[k] = v.Time
		}
	}

	kept := make(map[string]string)
	for _, v := range rows {
		k := v.Key(f.CountryCols, f.DimCols)
		if v.Time != latest[k] {
			stats.Older++
			continue
		}
		if raw, ok := kept[k]; ok {
			if raw == v.Raw.String {
				stats.Collapsed++
				continue
			}
			return nil, stats, DuplicateObservationError(
				f.SourceID, readableKey(k), v.Time,
			)
		}
		kept[k] = v.Raw.String
		res.Rows = append(res.Rows, v.Clone())
	}
	return res, stats, nil
}

func readableKey(k string) string {
	parts := strings.Split(k, "\x1f")
	var res []string
	for _, v := range parts {
		if v != "" {
			res = append(res, v)
		}
	}
	return strings.Join(res, "|")
}
