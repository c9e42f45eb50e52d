// Package normalize converts raw observation values into comparable
// scores between 0 and the maximum score of the run.
//
// Continuous variables are rescaled linearly between outlier-robust
// bounds computed from the quartiles of the normalized slice. Categorical
// variables, already encoded into small integers, are spread evenly over
// the score range, with code 0 meaning "no data".
package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/encode"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

const (
	// Inverted flags indicators where a higher raw value is worse.
	Inverted = "inverted"

	// NotInverted flags indicators where a higher raw value is better.
	NotInverted = "not inverted"

	// epsilonRange replaces a zero value range.
	epsilonRange = 0.001

	noDataCode = 0.0
)

// Options describe how a source is normalized.
type Options struct {
	// Filter selects the dimension slice, empty selects all rows.
	Filter string

	// VariableType is "Continuous variable" or a categorical type.
	VariableType string

	// Inversion is "inverted" or "not inverted", used by continuous
	// variables only. Empty means not inverted.
	Inversion string
}

// Stats describe a normalization.
type Stats struct {
	Continuous bool `json:"continuous"`

	// Slice is the number of rows selected by the filter.
	Slice int `json:"slice"`

	// Deduplicated rows of duplicate-tolerant countries.
	Deduplicated int `json:"deduplicated,omitempty"`

	// Old rows are older than the recency cutoff.
	Old int `json:"old,omitempty"`

	// NonNumeric rows have raw values that are not numbers.
	NonNumeric int `json:"nonNumeric,omitempty"`

	// NoData rows have no raw value or the categorical "no data" code.
	NoData int `json:"noData,omitempty"`

	// Scored rows got a score.
	Scored int `json:"scored"`

	// Categories is the number of categories with data.
	Categories int `json:"categories,omitempty"`

	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Q1       float64 `json:"q1,omitempty"`
	Q3       float64 `json:"q3,omitempty"`
	MinToUse float64 `json:"minToUse,omitempty"`
	MaxToUse float64 `json:"maxToUse,omitempty"`
}

type point struct {
	idx int
	val float64
}

// Normalize computes SCALED_OBS_VALUE of the rows in the slice chosen by
// the filter. Rows outside of the slice, rows older than the recency
// cutoff of the run and rows without a numeric value keep a NaN score.
// OBS_STATUS of rows without data is set to "O".
//
// Every country may appear only once in the slice. Countries listed as
// duplicate-tolerant in the run context may appear exactly twice when all
// other countries appear once, then the first row is used. Any other
// repeated country returns DuplicateCountryError.
func Normalize(
	rc *sdmx.RunContext,
	f *sdmx.Frame,
	opts Options,
) (*sdmx.Frame, Stats, error) {
	var stats Stats
	stats.Continuous = encode.IsContinuous(opts.VariableType)

	filter, err := ParseFilter(opts.Filter)
	if err != nil {
		return nil, stats, err
	}
	var inverted bool
	if stats.Continuous {
		inverted, err = parseInversion(opts.Inversion)
		if err != nil {
			return nil, stats, err
		}
	}

	res := f.Clone()
	var slice []int
	for i := range res.Rows {
		res.Rows[i].Scaled = math.NaN()
		if filter.Match(&res.Rows[i]) {
			slice = append(slice, i)
		}
	}
	stats.Slice = len(slice)

	slice, stats.Deduplicated = dedupTolerant(res, slice, rc.DuplicateTolerant)
	if stats.Deduplicated > 0 {
		slog.Info("Duplicate-tolerant countries deduplicated",
			"source_id", f.SourceID,
			"rows", stats.Deduplicated,
		)
	}

	oldest := rc.OldestYear()
	recent := slice[:0:0]
	for _, i := range slice {
		if res.Rows[i].Time < oldest {
			stats.Old++
			continue
		}
		recent = append(recent, i)
	}
	if err = checkUnique(res, recent); err != nil {
		return nil, stats, err
	}

	var pts []point
	var bad []string
	for _, i := range recent {
		row := res.Rows[i]
		if !row.Raw.Valid {
			stats.NoData++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row.Raw.String), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			stats.NonNumeric++
			if len(bad) < 5 && !slices.Contains(bad, row.Raw.String) {
				bad = append(bad, row.Raw.String)
			}
			continue
		}
		pts = append(pts, point{idx: i, val: v})
	}
	if stats.NonNumeric > 0 {
		slog.Warn("Raw values are not numbers and are not scored",
			"source_id", f.SourceID,
			"rows", stats.NonNumeric,
			"examples", bad,
		)
	}

	if stats.Continuous {
		scaleContinuous(rc, res, pts, inverted, &stats)
	} else {
		scaleCategorical(rc, res, pts, &stats)
	}

	for i := range res.Rows {
		row := &res.Rows[i]
		if !row.Raw.Valid || (!stats.Continuous && isNoDataCode(row.Raw.String)) {
			row.ObsStatus = sdmx.ObsStatusMissing
		}
	}

	slog.Debug("Source normalized",
		"source_id", f.SourceID,
		"slice", stats.Slice,
		"scored", stats.Scored,
		"old", stats.Old,
	)
	return res, stats, nil
}

func scaleContinuous(
	rc *sdmx.RunContext,
	f *sdmx.Frame,
	pts []point,
	inverted bool,
	stats *Stats,
) {
	if len(pts) == 0 {
		return
	}
	vals := make([]float64, len(pts))
	for i, v := range pts {
		vals[i] = v.val
	}
	vals = stat.Clean(vals)

	stats.Min = vals[0]
	stats.Max = vals[len(vals)-1]
	stats.Q1 = stat.QuantileSorted(vals, 0.25)
	stats.Q3 = stat.QuantileSorted(vals, 0.75)
	iqr := stats.Q3 - stats.Q1

	stats.MaxToUse = stats.Max
	if upper := stats.Q3 + rc.WhiskerFactor*iqr; stats.Max > upper {
		stats.MaxToUse = upper
	}
	stats.MinToUse = stats.Min
	if lower := stats.Q1 - rc.WhiskerFactor*iqr; stats.Min < lower {
		stats.MinToUse = lower
	}

	rng := stats.MaxToUse - stats.MinToUse
	if rng == 0 {
		rng = epsilonRange
		slog.Info("Zero value range, using epsilon",
			"source_id", f.SourceID,
			"epsilon", epsilonRange,
		)
	}

	for _, p := range pts {
		score := rc.MaxScore * (p.val - stats.MinToUse) / rng
		if inverted {
			score = rc.MaxScore - score
		}
		score = min(max(score, 0), rc.MaxScore)
		f.Rows[p.idx].Scaled = stat.Round(score, 2)
		stats.Scored++
	}
}

func scaleCategorical(
	rc *sdmx.RunContext,
	f *sdmx.Frame,
	pts []point,
	stats *Stats,
) {
	var cats []float64
	for _, p := range pts {
		if p.val != noDataCode && !slices.Contains(cats, p.val) {
			cats = append(cats, p.val)
		}
	}
	slices.Sort(cats)
	stats.Categories = len(cats)

	var step float64
	if len(cats) > 1 {
		step = rc.MaxScore / float64(len(cats)-1)
	}
	for _, p := range pts {
		if p.val == noDataCode {
			stats.NoData++
			continue
		}
		rank := slices.Index(cats, p.val)
		f.Rows[p.idx].Scaled = stat.Round(float64(rank)*step, 2)
		stats.Scored++
	}
}

// dedupTolerant removes the second row of duplicate-tolerant countries
// that appear exactly twice, as long as every other country of the slice
// appears once.
func dedupTolerant(f *sdmx.Frame, slice []int, tolerant []string) ([]int, int) {
	if len(tolerant) == 0 {
		return slice, 0
	}
	counts := make(map[string]int)
	for _, i := range slice {
		counts[f.Rows[i].Country.ISO3]++
	}
	for iso3, n := range counts {
		if !slices.Contains(tolerant, iso3) && n != 1 {
			return slice, 0
		}
	}

	seen := make(map[string]bool)
	res := make([]int, 0, len(slice))
	var removed int
	for _, i := range slice {
		iso3 := f.Rows[i].Country.ISO3
		if counts[iso3] == 2 && slices.Contains(tolerant, iso3) {
			if seen[iso3] {
				removed++
				continue
			}
			seen[iso3] = true
		}
		res = append(res, i)
	}
	return res, removed
}

func checkUnique(f *sdmx.Frame, slice []int) error {
	seen := make(map[string]int, len(slice))
	for _, i := range slice {
		seen[f.Rows[i].Country.ISO3]++
	}
	var dups []string
	for k, v := range seen {
		if v > 1 {
			dups = append(dups, k)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	slices.Sort(dups)
	return DuplicateCountryError(f.SourceID, dups)
}

func parseInversion(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", NotInverted:
		return false, nil
	case Inverted:
		return true, nil
	}
	return false, InversionFlagError(s)
}

func isNoDataCode(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && v == noDataCode
}

func (s Stats) String() string {
	if s.Continuous {
		return fmt.Sprintf("continuous, %d of %d scored, bounds [%g, %g]",
			s.Scored, s.Slice, s.MinToUse, s.MaxToUse)
	}
	return fmt.Sprintf("categorical, %d of %d scored, %d categories",
		s.Scored, s.Slice, s.Categories)
}
