package cleanse

import (
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// Fill completes a reconciled frame: missing dimension values become
// "_T", missing time periods become the processing year and the indicator
// metadata is attached to every row with the processing year as its
// release year.
func Fill(
	rc *sdmx.RunContext,
	f *sdmx.Frame,
	ind sdmx.Indicator,
) *sdmx.Frame {
	res := f.Clone()
	ind.ReleaseYear = rc.Year
	res.Indicator = &ind
	res.HasTime = true

	for i := range res.Rows {
		row := &res.Rows[i]
		for _, col := range res.DimCols {
			if strings.TrimSpace(row.Dims[col]) == "" {
				row.Dims[col] = sdmx.Total
			}
		}
		if row.Time == 0 {
			row.Time = rc.Year
		}
		row.SourceID = res.SourceID
		row.Indicator = res.Indicator
	}
	return res
}
