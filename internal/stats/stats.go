// Package stats provides the numeric safety helpers shared by the schema
// normalizer and the analysis result post-processing. Every helper degrades
// malformed numeric edges (NaN, Inf, empty input, zero denominators) to a
// defined default instead of returning an error.
package stats

import (
	"math"
	"sort"
)

// SafeFloat converts a possibly non-finite value to a plain float64.
// NaN and +/-Inf collapse to 0.
func SafeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Finite returns a copy of values with all NaN and Inf entries removed.
// The relative order of the surviving entries is preserved.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median, or 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Std returns the population standard deviation, or 0 for an empty slice.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// UncertaintyPercent returns std/mean*100, or 0 when the mean is 0 so a
// zero-valued distribution never produces a division-by-zero.
func UncertaintyPercent(mean, std float64) float64 {
	if mean == 0 {
		return 0
	}
	return SafeFloat(std / mean * 100)
}

// SanitizeAndScale drops non-finite entries from values and applies the
// magnitude-based unit heuristic: a mean above 1e6 is read as Wh and divided
// by 1e9, a mean above 1e3 as kWh and divided by 1e6, anything smaller is
// assumed to already be in GWh. This is a documented best-effort fallback
// for engines that do not report explicit units.
func SanitizeAndScale(values []float64) []float64 {
	finite := Finite(values)
	if len(finite) == 0 {
		return finite
	}
	switch mean := Mean(finite); {
	case mean > 1e6:
		scale(finite, 1e9)
	case mean > 1e3:
		scale(finite, 1e6)
	}
	return finite
}

func scale(values []float64, divisor float64) {
	for i := range values {
		values[i] /= divisor
	}
}
