// Package stat has the few descriptive statistics the pipeline needs.
// Missing values are represented by NaN and are skipped everywhere.
package stat

import (
	"math"
	"slices"
)

// Clean returns a sorted copy of values without NaN.
func Clean(values []float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			res = append(res, v)
		}
	}
	slices.Sort(res)
	return res
}

// Quantile computes the q-th quantile of values by linear interpolation
// between the closest ranks (position q*(n-1)). It returns NaN for an
// empty input.
func Quantile(values []float64, q float64) float64 {
	sorted := Clean(values)
	return QuantileSorted(sorted, q)
}

// QuantileSorted is Quantile for already sorted values without NaN.
func QuantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is the 0.5 quantile.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Mean returns the arithmetic mean of non-NaN values, or NaN if there
// are none.
func Mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
