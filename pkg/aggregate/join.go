package aggregate

import "github.com/m-g-d-c/crba-etl/pkg/sdmx"

// FinalRow is an observation together with the aggregated scores of its
// country and indicator classification. Score is nil when the country
// takes no part in aggregation.
type FinalRow struct {
	sdmx.Observation
	Score *Score
}

// Join attaches aggregated scores to every observation of the combined
// frame, matching country, category, issue and index. Observations without
// a matching score are kept.
func Join(f *sdmx.Frame, scores []Score) []FinalRow {
	idx := make(map[catKey]int, len(scores))
	for i, v := range scores {
		idx[catKey{
			iso3:     v.Country.ISO3,
			category: v.Category,
			issue:    v.Issue,
			index:    v.Index,
		}] = i
	}

	res := make([]FinalRow, 0, len(f.Rows))
	for _, v := range f.Rows {
		row := FinalRow{Observation: v}
		if ind := v.Indicator; ind != nil {
			k := catKey{
				iso3:     v.Country.ISO3,
				category: ind.Category,
				issue:    ind.Issue,
				index:    ind.Index,
			}
			if i, ok := idx[k]; ok {
				row.Score = &scores[i]
			}
		}
		res = append(res, row)
	}
	return res
}
