// Package deviation implements the workload measured by arraycompare: the
// maximum absolute deviation of a value from a comparison set.
package deviation

import "math"

// Func computes a deviation for value against others.
// Runners accept a Func so the workload can be swapped in tests.
type Func func(value float64, others []float64) float64

// Max returns the largest |value - o| over every o in others.
//
// others may contain value itself; that comparison contributes zero and
// never changes the result. An empty comparison set has no defined
// deviation and yields math.Inf(-1).
func Max(value float64, others []float64) float64 {
	max := math.Inf(-1)
	for _, other := range others {
		diff := math.Abs(value - other)
		if diff > max {
			max = diff
		}
	}
	return max
}

// NoData reports whether d is the result of evaluating an empty comparison set.
func NoData(d float64) bool {
	return math.IsInf(d, -1)
}
