// Package aggregate rolls indicator scores up to category, issue, index
// and overall scores per country and labels them with risk categories.
package aggregate

import (
	"cmp"
	"math"
	"slices"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

// ExcludedISO3 is not part of any aggregated score. Kosovo has indicator
// data but is not a member of the country list the scores are published
// for.
const ExcludedISO3 = "XKX"

// WeightedCategories count twice in issue scores.
var WeightedCategories = []string{"Outcome", "Enforcement"}

// Score is the aggregated result of one country, category, issue and
// index. Issue, index and overall scores repeat on all rows they cover.
type Score struct {
	Country  sdmx.Country
	Category string
	Issue    string
	Index    string

	CategoryIssueScore float64
	IssueIndexScore    float64
	IssueIndexRisk     string
	IndexScore         float64
	IndexRisk          string
	OverallScore       float64
	OverallRisk        string
}

// Levels keeps the risk thresholds of every aggregation level.
type Levels struct {
	IssueIndex Thresholds `json:"issueIndex"`
	Index      Thresholds `json:"index"`
	Overall    Thresholds `json:"overall"`
}

type catKey struct {
	iso3, category, issue, index string
}

type issueKey struct {
	iso3, issue, index string
}

type indexKey struct {
	iso3, index string
}

// Aggregate computes the score hierarchy from the combined frame of all
// sources:
//
//  1. mean indicator score per country, category, issue and index;
//  2. mean category score per country, issue and index, where Outcome
//     and Enforcement categories are counted twice;
//  3. mean issue score per country and index;
//  4. mean index score per country.
//
// NaN scores are skipped by every mean. Risk thresholds are recomputed
// for levels 2 to 4. Countries outside of the master list and XKX are
// left out. Rows are sorted by master list order, index, issue and
// category.
func Aggregate(
	f *sdmx.Frame,
	master *sdmx.CountryList,
) ([]Score, Levels, error) {
	var lv Levels
	cats := make(map[catKey][]float64)
	var catOrder []catKey
	for _, v := range f.Rows {
		ind := v.Indicator
		if ind == nil || v.Country.ISO3 == ExcludedISO3 {
			continue
		}
		if _, ok := master.ByISO3(v.Country.ISO3); !ok {
			continue
		}
		k := catKey{
			iso3:     v.Country.ISO3,
			category: ind.Category,
			issue:    ind.Issue,
			index:    ind.Index,
		}
		if _, ok := cats[k]; !ok {
			catOrder = append(catOrder, k)
		}
		cats[k] = append(cats[k], v.Scaled)
	}
	if len(catOrder) == 0 {
		return nil, lv, EmptyError()
	}

	catScores := make(map[catKey]float64, len(catOrder))
	issues := make(map[issueKey][]float64)
	for _, k := range catOrder {
		score := stat.Mean(cats[k])
		catScores[k] = score
		ik := issueKey{iso3: k.iso3, issue: k.issue, index: k.index}
		issues[ik] = append(issues[ik], score)
		if slices.Contains(WeightedCategories, k.category) {
			issues[ik] = append(issues[ik], score)
		}
	}

	issueScores := means(issues)
	lv.IssueIndex = NewThresholds(values(issueScores))

	indexes := make(map[indexKey][]float64)
	for k, v := range issueScores {
		xk := indexKey{iso3: k.iso3, index: k.index}
		indexes[xk] = append(indexes[xk], v)
	}
	indexScores := means(indexes)
	lv.Index = NewThresholds(values(indexScores))

	overall := make(map[string][]float64)
	for k, v := range indexScores {
		overall[k.iso3] = append(overall[k.iso3], v)
	}
	overallScores := means(overall)
	lv.Overall = NewThresholds(values(overallScores))

	res := make([]Score, 0, len(catOrder))
	for _, k := range catOrder {
		c, _ := master.ByISO3(k.iso3)
		ik := issueKey{iso3: k.iso3, issue: k.issue, index: k.index}
		xk := indexKey{iso3: k.iso3, index: k.index}
		res = append(res, Score{
			Country:            c,
			Category:           k.category,
			Issue:              k.issue,
			Index:              k.index,
			CategoryIssueScore: round(catScores[k]),
			IssueIndexScore:    round(issueScores[ik]),
			IssueIndexRisk:     lv.IssueIndex.Label(issueScores[ik]),
			IndexScore:         round(indexScores[xk]),
			IndexRisk:          lv.Index.Label(indexScores[xk]),
			OverallScore:       round(overallScores[k.iso3]),
			OverallRisk:        lv.Overall.Label(overallScores[k.iso3]),
		})
	}

	order := make(map[string]int, master.Len())
	for i, v := range master.Countries() {
		order[v.ISO3] = i
	}
	slices.SortStableFunc(res, func(a, b Score) int {
		return cmp.Or(
			cmp.Compare(order[a.Country.ISO3], order[b.Country.ISO3]),
			cmp.Compare(a.Index, b.Index),
			cmp.Compare(a.Issue, b.Issue),
			cmp.Compare(a.Category, b.Category),
		)
	})
	return res, lv, nil
}

func means[K comparable](groups map[K][]float64) map[K]float64 {
	res := make(map[K]float64, len(groups))
	for k, v := range groups {
		res[k] = stat.Mean(v)
	}
	return res
}

func values[K comparable](m map[K]float64) []float64 {
	res := make([]float64, 0, len(m))
	for _, v := range m {
		res = append(res, v)
	}
	return res
}

func round(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return stat.Round(v, 4)
}
