package forecast

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation, or 0 when n < 2.
func StdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	variance := sum2 / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// CoefficientOfVariation returns stddev/mean. The second return value is
// false when the mean is too small for the ratio to be meaningful.
func CoefficientOfVariation(xs []float64) (float64, bool) {
	mean := Mean(xs)
	if len(xs) < 2 || math.Abs(mean) < 1e-9 {
		return 0, false
	}
	return StdDev(xs) / mean, true
}

// FitTrend fits y = intercept + slope*t by least squares with t = 0..n-1.
// Returns ok=false when the series is too short or has no usable variance,
// which callers treat as a model fit failure.
func FitTrend(ys []float64) (intercept, slope float64, ok bool) {
	n := len(ys)
	if n < 2 {
		return 0, 0, false
	}
	if StdDev(ys) < 1e-9 {
		return 0, 0, false
	}

	fn := float64(n)
	var sumT, sumY, sumTY, sumTT float64
	for i, y := range ys {
		t := float64(i)
		sumT += t
		sumY += y
		sumTY += t * y
		sumTT += t * t
	}
	det := fn*sumTT - sumT*sumT
	if math.Abs(det) < 1e-9 {
		return 0, 0, false
	}
	slope = (fn*sumTY - sumT*sumY) / det
	intercept = (sumY - slope*sumT) / fn
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, 0, false
	}
	return intercept, slope, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
