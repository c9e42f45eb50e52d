package cleanse

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/encode"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// UnmappedValue replaces dimension and attribute values that have no
// entry in the value mapping of their column.
const UnmappedValue = "UNMAPPED VALUE - PLEASE MAP"

// ValueStats counts harmonized values per column.
type ValueStats struct {
	Mapped   map[string]int
	Unmapped map[string]int
}

// MapValues harmonizes dimension and attribute values with the value
// mapping of the column mapping. Empty values of dimensions become "_T"
// and empty attributes are removed, "_T" is kept, known values are
// replaced by their target and anything else becomes UnmappedValue.
// Columns without a value mapping are left alone.
func MapValues(m *sdmx.ColumnMapping, f *sdmx.Frame) (*sdmx.Frame, ValueStats) {
	stats := ValueStats{
		Mapped:   make(map[string]int),
		Unmapped: make(map[string]int),
	}
	res := f.Clone()

	for _, col := range m.MappedColumns() {
		isDim := slices.Contains(res.DimCols, col)
		if !isDim && !slices.Contains(res.AttrCols, col) {
			continue
		}
		rules := valueRules(m, col, isDim)

		for i := range res.Rows {
			vals := res.Rows[i].Attrs
			if isDim {
				vals = res.Rows[i].Dims
			}
			v := rules.Apply(vals[col])
			switch v {
			case "":
				delete(vals, col)
				continue
			case UnmappedValue:
				stats.Unmapped[col]++
			default:
				stats.Mapped[col]++
			}
			vals[col] = v
		}

		if n := stats.Unmapped[col]; n > 0 {
			slog.Warn("Values without mapping",
				"source_id", f.SourceID,
				"column", col,
				"rows", n,
			)
		}
	}
	return res, stats
}

func valueRules(m *sdmx.ColumnMapping, col string, isDim bool) encode.Rules {
	var rs encode.Rules
	blank := ""
	if isDim {
		blank = sdmx.Total
	}
	rs.Add(encode.Blank(), encode.Const(blank))
	rs.Add(encode.Equals(sdmx.Total), encode.Const(sdmx.Total))
	rs.Add(
		func(v string) bool {
			_, ok := m.ValueTarget(col, strings.TrimSpace(v))
			return ok
		},
		func(v string) string {
			res, _ := m.ValueTarget(col, strings.TrimSpace(v))
			return res
		},
	)
	rs.Default = encode.Const(UnmappedValue)
	return rs
}
