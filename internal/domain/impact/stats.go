package impact

import "math"

// ZScores standardizes xs by its mean and sample standard deviation
// (n-1 denominator). When the deviation is zero or undefined (fewer than two
// values) every score is 0.
func ZScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) < 2 || constant(xs) {
		return out
	}

	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(xs)-1))
	if !(std > 0) {
		return out
	}

	for i, x := range xs {
		out[i] = (x - mean) / std
	}
	return out
}

// constant reports whether every value equals the first. Summation rounding
// would otherwise leave a tiny non-zero deviation for a homogeneous cohort.
func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
