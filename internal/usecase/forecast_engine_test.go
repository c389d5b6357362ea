package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	domsvc "RetailPulse/internal/domain/service"
	repo "RetailPulse/internal/repository"
	"RetailPulse/internal/services/forecast"
)

type fixedAdjuster struct {
	src   models.AdjustmentSource
	val   float64
	err   error
	delay time.Duration
}

func (f fixedAdjuster) Source() models.AdjustmentSource { return f.src }

func (f fixedAdjuster) Adjust(ctx context.Context, _, _ string) (models.SignalAdjustment, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.SignalAdjustment{}, ctx.Err()
		}
	}
	if f.err != nil {
		return models.SignalAdjustment{}, f.err
	}
	return models.SignalAdjustment{Source: f.src, Value: f.val}, nil
}

func constantHistory(productID string, demand float64, days int) *repo.MemoryHistoryStore {
	store := repo.NewMemoryHistoryStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.TimeSeriesPoint, days)
	for i := range pts {
		pts[i] = models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Demand: demand}
	}
	store.Load(productID, pts)
	return store
}

func newTestEngine(history domrepo.HistoryProvider, adjusters ...domsvc.SignalAdjuster) *ForecastEngine {
	return NewForecastEngine(EngineConfig{}, history, forecast.NewSeasonalTrendForecaster(nil), adjusters, nil, nil, nil)
}

func TestForecastComposition(t *testing.T) {
	history := constantHistory("p1", 100, 60)
	engine := newTestEngine(history,
		fixedAdjuster{src: models.SourceSocial, val: 0.1},
		fixedAdjuster{src: models.SourceWeather, val: -0.05},
		fixedAdjuster{src: models.SourceEvent, val: 0.05},
	)

	res, err := engine.Forecast(context.Background(), ForecastParams{
		ProductID: "p1", StoreID: "main", Horizon: domrepo.HorizonMonth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.BaseForecast-100) > 1e-9 {
		t.Fatalf("base = %v, want 100", res.BaseForecast)
	}
	// 100 * (1 + 0.1 - 0.05 + 0.05) = 110
	if math.Abs(res.FinalForecast-110) > 1e-9 {
		t.Fatalf("final = %v, want 110", res.FinalForecast)
	}

	// margin = 100 * 0.1 * (1 + 0.2) * 1.96 = 23.52
	wantLower, wantUpper := 110-23.52, 110+23.52
	if math.Abs(res.Interval.Lower-wantLower) > 1e-9 || math.Abs(res.Interval.Upper-wantUpper) > 1e-9 {
		t.Fatalf("interval = [%v, %v], want [%v, %v]",
			res.Interval.Lower, res.Interval.Upper, wantLower, wantUpper)
	}
	if res.Interval.Level != 0.95 {
		t.Fatalf("level = %v, want 0.95", res.Interval.Level)
	}
	if res.Interval.Lower > res.FinalForecast || res.Interval.Upper < res.FinalForecast {
		t.Fatal("interval must contain the final forecast")
	}
}

func TestForecastUnknownProduct(t *testing.T) {
	engine := newTestEngine(repo.NewMemoryHistoryStore())
	_, err := engine.Forecast(context.Background(), ForecastParams{
		ProductID: "ghost", StoreID: "main", Horizon: domrepo.HorizonMonth,
	})
	if !errors.Is(err, domrepo.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestForecastAdjusterErrorContributesZero(t *testing.T) {
	history := constantHistory("p1", 100, 60)
	engine := newTestEngine(history,
		fixedAdjuster{src: models.SourceSocial, err: errors.New("provider down")},
		fixedAdjuster{src: models.SourceWeather, val: 0.1},
	)

	res, err := engine.Forecast(context.Background(), ForecastParams{
		ProductID: "p1", StoreID: "main", Horizon: domrepo.HorizonMonth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Adjustments[models.SourceSocial] != 0 {
		t.Fatalf("social adjustment = %v, want 0 on provider error", res.Adjustments[models.SourceSocial])
	}
	if math.Abs(res.FinalForecast-110) > 1e-9 {
		t.Fatalf("final = %v, want 110", res.FinalForecast)
	}
}

func TestForecastSlowAdjusterTimesOut(t *testing.T) {
	history := constantHistory("p1", 100, 60)
	engine := NewForecastEngine(EngineConfig{SignalTimeout: 50 * time.Millisecond},
		history, forecast.NewSeasonalTrendForecaster(nil),
		[]domsvc.SignalAdjuster{
			fixedAdjuster{src: models.SourceSocial, val: 0.5, delay: 2 * time.Second},
			fixedAdjuster{src: models.SourceWeather, val: 0.1},
		}, nil, nil, nil)

	res, err := engine.Forecast(context.Background(), ForecastParams{
		ProductID: "p1", StoreID: "main", Horizon: domrepo.HorizonMonth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Adjustments[models.SourceSocial] != 0 {
		t.Fatalf("social adjustment = %v, want 0 after timeout", res.Adjustments[models.SourceSocial])
	}
	if math.Abs(res.FinalForecast-110) > 1e-9 {
		t.Fatalf("final = %v, want 110 from the fast adjuster alone", res.FinalForecast)
	}
}

func TestForecastNegativeSumFloorsAtZero(t *testing.T) {
	history := constantHistory("p1", 100, 60)
	engine := newTestEngine(history,
		fixedAdjuster{src: models.SourceSocial, val: -1},
		fixedAdjuster{src: models.SourceWeather, val: -1},
	)

	res, err := engine.Forecast(context.Background(), ForecastParams{
		ProductID: "p1", StoreID: "main", Horizon: domrepo.HorizonMonth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalForecast != 0 {
		t.Fatalf("final = %v, want 0", res.FinalForecast)
	}
	if res.Interval.Lower != 0 {
		t.Fatalf("lower = %v, want 0", res.Interval.Lower)
	}
}

func TestBatchForecastPartialSuccess(t *testing.T) {
	history := constantHistory("p1", 50, 60)
	engine := newTestEngine(history)
	batch := NewBatchForecaster(engine, 4, nil)

	out, err := batch.Run(context.Background(), []string{"p1", "ghost"}, "main", domrepo.HorizonWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(out.Results))
	}
	if out.Results[0].ProductID != "p1" {
		t.Fatalf("result product = %q, want p1", out.Results[0].ProductID)
	}
	if len(out.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(out.Errors))
	}
	if _, ok := out.Errors["ghost"]; !ok {
		t.Fatalf("errors = %v, want entry for ghost", out.Errors)
	}
}

func TestBatchForecastEmptyInput(t *testing.T) {
	batch := NewBatchForecaster(newTestEngine(repo.NewMemoryHistoryStore()), 0, nil)
	out, err := batch.Run(context.Background(), nil, "main", domrepo.HorizonMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 0 || out.Errors != nil {
		t.Fatalf("empty batch should yield no results and nil errors, got %+v", out)
	}
}
