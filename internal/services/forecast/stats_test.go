package forecast

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("mean of empty = %v, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); !almostEqual(got, 4, 1e-12) {
		t.Fatalf("mean = %v, want 4", got)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{5}); got != 0 {
		t.Fatalf("stddev of single point = %v, want 0", got)
	}
	// Sample stddev of {2,4,4,4,5,5,7,9} is sqrt(32/7)
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("stddev = %v, want %v", got, want)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if _, ok := CoefficientOfVariation([]float64{0, 0, 0}); ok {
		t.Fatal("cov of zero-mean series should not be meaningful")
	}
	cov, ok := CoefficientOfVariation([]float64{10, 10, 10, 10})
	if !ok {
		t.Fatal("cov of constant positive series should be meaningful")
	}
	if cov != 0 {
		t.Fatalf("cov of constant series = %v, want 0", cov)
	}
}

func TestFitTrend(t *testing.T) {
	// Exact line y = 3 + 2t
	ys := make([]float64, 20)
	for i := range ys {
		ys[i] = 3 + 2*float64(i)
	}
	intercept, slope, ok := FitTrend(ys)
	if !ok {
		t.Fatal("fit should succeed on a clean line")
	}
	if !almostEqual(intercept, 3, 1e-6) || !almostEqual(slope, 2, 1e-6) {
		t.Fatalf("fit = (%v, %v), want (3, 2)", intercept, slope)
	}
}

func TestFitTrendDegenerate(t *testing.T) {
	if _, _, ok := FitTrend([]float64{5}); ok {
		t.Fatal("fit on a single point should fail")
	}
	if _, _, ok := FitTrend([]float64{7, 7, 7, 7, 7}); ok {
		t.Fatal("fit on a constant series should fail")
	}
}
