package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
)

func series(start time.Time, demands ...float64) []models.TimeSeriesPoint {
	pts := make([]models.TimeSeriesPoint, len(demands))
	for i, d := range demands {
		pts[i] = models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Demand: d}
	}
	return pts
}

func TestForecastEmptyHistory(t *testing.T) {
	f := NewSeasonalTrendForecaster(nil)
	_, err := f.Forecast(context.Background(), "p1", nil, domrepo.HorizonMonth)
	if !errors.Is(err, domrepo.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestForecastShortHistoryUsesMean(t *testing.T) {
	f := NewSeasonalTrendForecaster(nil)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	hist := series(start, 10, 20, 30)

	bf, err := f.Forecast(context.Background(), "p1", hist, domrepo.HorizonWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bf.Method != "mean" {
		t.Fatalf("method = %q, want mean", bf.Method)
	}
	if !almostEqual(bf.PointEstimate, 20, 1e-9) {
		t.Fatalf("estimate = %v, want 20", bf.PointEstimate)
	}
	if bf.HorizonDays != 7 {
		t.Fatalf("horizon days = %d, want 7", bf.HorizonDays)
	}
}

func TestForecastConstantSeriesFallsBackToMovingAverage(t *testing.T) {
	f := NewSeasonalTrendForecaster(nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	demands := make([]float64, 60)
	for i := range demands {
		demands[i] = 100
	}
	hist := series(start, demands...)

	bf, err := f.Forecast(context.Background(), "p1", hist, domrepo.HorizonMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bf.Method != "moving_average" {
		t.Fatalf("method = %q, want moving_average", bf.Method)
	}
	if !almostEqual(bf.PointEstimate, 100, 1e-9) {
		t.Fatalf("estimate = %v, want 100", bf.PointEstimate)
	}
}

func TestForecastLinearTrendProjectsForward(t *testing.T) {
	f := NewSeasonalTrendForecaster(nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	demands := make([]float64, 90)
	for i := range demands {
		demands[i] = 50 + 0.5*float64(i)
	}
	hist := series(start, demands...)

	bf, err := f.Forecast(context.Background(), "p1", hist, domrepo.HorizonWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bf.Method != "seasonal_trend" {
		t.Fatalf("method = %q, want seasonal_trend", bf.Method)
	}
	// Trend continues past the last observed point (94.5 at t=89), so the
	// projected mean must exceed the last observation.
	if bf.PointEstimate <= demands[len(demands)-1] {
		t.Fatalf("estimate = %v, want > %v", bf.PointEstimate, demands[len(demands)-1])
	}
	if bf.PointEstimate < 0 {
		t.Fatalf("estimate = %v, want >= 0", bf.PointEstimate)
	}
}

func TestForecastNeverNegative(t *testing.T) {
	f := NewSeasonalTrendForecaster(nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Steeply declining demand drives the linear projection below zero.
	demands := make([]float64, 30)
	for i := range demands {
		demands[i] = 60 - 3*float64(i)
		if demands[i] < 0 {
			demands[i] = 0
		}
	}
	hist := series(start, demands...)

	bf, err := f.Forecast(context.Background(), "p1", hist, domrepo.HorizonQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bf.PointEstimate < 0 {
		t.Fatalf("estimate = %v, want >= 0", bf.PointEstimate)
	}
}

func TestSeasonalityFactorBounds(t *testing.T) {
	for doy := 1; doy <= 365; doy++ {
		f := SeasonalityFactor(doy)
		if f < 0.8-1e-9 || f > 1.2+1e-9 {
			t.Fatalf("day %d: factor = %v, want within [0.8, 1.2]", doy, f)
		}
	}
	// Peak near the first quarter of the cycle.
	if SeasonalityFactor(91) < 1.19 {
		t.Fatalf("day 91: factor = %v, want near 1.2", SeasonalityFactor(91))
	}
}

func TestMovingAverageWindowClamp(t *testing.T) {
	got := movingAverage([]float64{1, 2, 3}, 30)
	if !almostEqual(got, 2, 1e-12) {
		t.Fatalf("moving average = %v, want 2", got)
	}
}
