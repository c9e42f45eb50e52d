package aggregate

import (
	"math"

	"github.com/m-g-d-c/crba-etl/pkg/stat"
)

// Risk labels of aggregated scores.
const (
	HighRisk   = "High risk"
	MediumRisk = "Medium risk"
	LowRisk    = "Low risk"
)

const (
	lowerPercentile = 0.333
	upperPercentile = 0.667
)

// Thresholds are the score percentiles that separate risk labels.
type Thresholds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NewThresholds computes thresholds from the score distribution of one
// aggregation level. NaN scores are ignored.
func NewThresholds(scores []float64) Thresholds {
	sorted := stat.Clean(scores)
	return Thresholds{
		Lower: stat.QuantileSorted(sorted, lowerPercentile),
		Upper: stat.QuantileSorted(sorted, upperPercentile),
	}
}

// Label returns the risk label of a score: scores below the lower
// threshold are high risk, scores above the upper one are low risk. A NaN
// score has no label.
func (t Thresholds) Label(score float64) string {
	switch {
	case math.IsNaN(score):
		return ""
	case score < t.Lower:
		return HighRisk
	case score > t.Upper:
		return LowRisk
	default:
		return MediumRisk
	}
}
