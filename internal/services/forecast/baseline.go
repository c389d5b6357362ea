package forecast

import (
	"context"
	"math"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	domsvc "RetailPulse/internal/domain/service"
	applogger "RetailPulse/pkg/logger"
)

const (
	// MinHistoryPoints is the minimum series length for model fitting.
	// Shorter series fall back to a plain mean of what is available.
	MinHistoryPoints = 14

	// fallbackWindow is the trailing moving-average window used when
	// model fitting fails.
	fallbackWindow = 30

	seasonalPeriod = 365.0
)

// SeasonalTrendForecaster fits a linear trend combined multiplicatively
// with a first-harmonic yearly seasonal factor and projects mean daily
// demand over the horizon. Fit failures degrade to a moving average and
// are never fatal.
type SeasonalTrendForecaster struct {
	l *applogger.Logger
}

func NewSeasonalTrendForecaster(l *applogger.Logger) *SeasonalTrendForecaster {
	return &SeasonalTrendForecaster{l: l}
}

func (f *SeasonalTrendForecaster) Forecast(ctx context.Context, productID string, history []models.TimeSeriesPoint, horizon domrepo.Horizon) (models.BaseForecast, error) {
	if len(history) == 0 {
		return models.BaseForecast{}, domrepo.ErrUnknownProduct
	}

	days := horizon.Days()
	bf := models.BaseForecast{ProductID: productID, HorizonDays: days}

	if len(history) < MinHistoryPoints {
		bf.Method = "mean"
		bf.PointEstimate = clampNonNegative(Mean(demands(history)))
		if f.l != nil {
			f.l.Warn("insufficient history, using mean of available points",
				applogger.String("product", productID),
				applogger.Int("points", len(history)),
			)
		}
		return bf, nil
	}

	if est, ok := f.fitAndProject(history, days); ok {
		bf.Method = "seasonal_trend"
		bf.PointEstimate = est
		return bf, nil
	}

	bf.Method = "moving_average"
	bf.PointEstimate = clampNonNegative(movingAverage(demands(history), fallbackWindow))
	if f.l != nil {
		f.l.Warn("model fit failed, falling back to moving average",
			applogger.String("product", productID),
			applogger.Int("window", fallbackWindow),
		)
	}
	return bf, nil
}

// fitAndProject returns the mean projected daily demand over horizonDays
// and whether the fit succeeded.
func (f *SeasonalTrendForecaster) fitAndProject(history []models.TimeSeriesPoint, horizonDays int) (float64, bool) {
	ys := demands(history)
	intercept, slope, ok := FitTrend(ys)
	if !ok {
		return 0, false
	}

	sinCoef, cosCoef := f.fitSeasonality(history, intercept, slope)

	n := len(ys)
	sum := 0.0
	for h := 1; h <= horizonDays; h++ {
		t := float64(n - 1 + h)
		trend := intercept + slope*t
		day := history[n-1].Date.AddDate(0, 0, h)
		seasonal := 1 + sinCoef*seasonSin(day) + cosCoef*seasonCos(day)
		if seasonal < 0 {
			seasonal = 0
		}
		sum += trend * seasonal
	}
	est := sum / float64(horizonDays)
	if math.IsNaN(est) || math.IsInf(est, 0) {
		return 0, false
	}
	return clampNonNegative(est), true
}

// fitSeasonality regresses the detrended ratio (y/trend - 1) on the yearly
// first harmonic. A degenerate system yields zero coefficients, meaning no
// seasonal effect.
func (f *SeasonalTrendForecaster) fitSeasonality(history []models.TimeSeriesPoint, intercept, slope float64) (sinCoef, cosCoef float64) {
	var ss, cc, sc, sr, cr float64
	count := 0
	for i, p := range history {
		trend := intercept + slope*float64(i)
		if trend <= 1e-9 {
			continue
		}
		r := p.Demand/trend - 1
		s := seasonSin(p.Date)
		c := seasonCos(p.Date)
		ss += s * s
		cc += c * c
		sc += s * c
		sr += s * r
		cr += c * r
		count++
	}
	if count < 4 {
		return 0, 0
	}
	det := ss*cc - sc*sc
	if math.Abs(det) < 1e-9 {
		return 0, 0
	}
	sinCoef = (sr*cc - cr*sc) / det
	cosCoef = (cr*ss - sr*sc) / det
	if math.IsNaN(sinCoef) || math.IsNaN(cosCoef) {
		return 0, 0
	}
	return sinCoef, cosCoef
}

func seasonSin(day interface{ YearDay() int }) float64 {
	return math.Sin(2 * math.Pi * float64(day.YearDay()) / seasonalPeriod)
}

func seasonCos(day interface{ YearDay() int }) float64 {
	return math.Cos(2 * math.Pi * float64(day.YearDay()) / seasonalPeriod)
}

// SeasonalityFactor is the shared day-of-year demand multiplier used by
// threshold derivation.
func SeasonalityFactor(dayOfYear int) float64 {
	return 1 + 0.2*math.Sin(2*math.Pi*float64(dayOfYear)/seasonalPeriod)
}

func movingAverage(ys []float64, window int) float64 {
	if len(ys) == 0 {
		return 0
	}
	if window > len(ys) {
		window = len(ys)
	}
	return Mean(ys[len(ys)-window:])
}

func demands(pts []models.TimeSeriesPoint) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Demand
	}
	return out
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

var _ domsvc.BaseForecaster = (*SeasonalTrendForecaster)(nil)
