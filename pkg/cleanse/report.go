package cleanse

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

// Summary describes a cleansed frame.
type Summary struct {
	Rows       int     `json:"rows"`
	NAShare    float64 `json:"naShare"`
	MinTime    int     `json:"minTime,omitempty"`
	MaxTime    int     `json:"maxTime,omitempty"`
	Duplicates int     `json:"duplicates,omitempty"`
}

// Report summarizes a cleansed frame and removes rows that are exact
// repeats of an earlier row. Repeated rows usually mean that a dimension
// of the source has no column mapping, so they are logged as a warning.
func Report(f *sdmx.Frame) (*sdmx.Frame, Summary) {
	var sum Summary
	res := f.CloneEmpty()

	seen := make(map[string]struct{}, len(f.Rows))
	var na int
	for _, v := range f.Rows {
		fp := fingerprint(f, v)
		if _, ok := seen[fp]; ok {
			sum.Duplicates++
			continue
		}
		seen[fp] = struct{}{}
		res.Rows = append(res.Rows, v.Clone())

		if !v.Raw.Valid {
			na++
		}
		if v.Time == 0 {
			continue
		}
		if sum.MinTime == 0 || v.Time < sum.MinTime {
			sum.MinTime = v.Time
		}
		if v.Time > sum.MaxTime {
			sum.MaxTime = v.Time
		}
	}

	sum.Rows = len(res.Rows)
	if sum.Rows > 0 {
		sum.NAShare = stat.Round(float64(na)/float64(sum.Rows), 4)
	}

	if sum.Duplicates > 0 {
		slog.Warn("Duplicate rows removed, check column and value mappings",
			"source_id", f.SourceID,
			"duplicates", sum.Duplicates,
		)
	}
	slog.Info("Cleansing done",
		"source_id", f.SourceID,
		"rows", sum.Rows,
		"na_share", sum.NAShare,
		"min_time", sum.MinTime,
		"max_time", sum.MaxTime,
	)
	return res, sum
}

func fingerprint(f *sdmx.Frame, o sdmx.Observation) string {
	var sb strings.Builder
	sb.WriteString(o.Key(sdmx.CountryColumns, f.DimCols))
	sb.WriteByte('\x1e')
	sb.WriteString(strconv.Itoa(o.Time))
	sb.WriteByte('\x1e')
	if o.Raw.Valid {
		sb.WriteString(o.Raw.String)
	} else {
		sb.WriteString("\x00")
	}
	for _, col := range f.AttrCols {
		sb.WriteByte('\x1e')
		sb.WriteString(o.Attrs[col])
	}
	return sb.String()
}
