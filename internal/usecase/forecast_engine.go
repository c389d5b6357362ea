package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	domsvc "RetailPulse/internal/domain/service"
	fmetrics "RetailPulse/internal/service/metrics"
	applogger "RetailPulse/pkg/logger"
)

// EngineConfig tunes forecast composition. Zero values are replaced by
// defaults in NewForecastEngine.
type EngineConfig struct {
	SignalTimeout time.Duration // per-forecast budget for signal collection
	BaseMargin    float64       // interval half-width as a fraction of base
	ZScore        float64       // width multiplier for the target level
	Level         float64       // nominal coverage reported on intervals
}

func (c *EngineConfig) applyDefaults() {
	if c.SignalTimeout <= 0 {
		c.SignalTimeout = 2 * time.Second
	}
	if c.BaseMargin <= 0 {
		c.BaseMargin = 0.1
	}
	if c.ZScore <= 0 {
		c.ZScore = 1.96
	}
	if c.Level <= 0 {
		c.Level = 0.95
	}
}

// ForecastParams identifies one forecast request.
type ForecastParams struct {
	ProductID string
	StoreID   string
	Horizon   domrepo.Horizon
}

// ForecastEngine composes the base forecast with signal adjustments and a
// heuristic confidence interval. Signal failures never fail a forecast;
// only an unknown product does.
type ForecastEngine struct {
	cfg        EngineConfig
	history    domrepo.HistoryProvider
	forecaster domsvc.BaseForecaster
	adjusters  []domsvc.SignalAdjuster
	flog       domrepo.ForecastLog
	metrics    *fmetrics.ForecastMetrics
	l          *applogger.Logger
}

func NewForecastEngine(
	cfg EngineConfig,
	history domrepo.HistoryProvider,
	forecaster domsvc.BaseForecaster,
	adjusters []domsvc.SignalAdjuster,
	flog domrepo.ForecastLog,
	m *fmetrics.ForecastMetrics,
	l *applogger.Logger,
) *ForecastEngine {
	cfg.applyDefaults()
	return &ForecastEngine{
		cfg:        cfg,
		history:    history,
		forecaster: forecaster,
		adjusters:  adjusters,
		flog:       flog,
		metrics:    m,
		l:          l,
	}
}

func (e *ForecastEngine) Forecast(ctx context.Context, p ForecastParams) (*models.ForecastResult, error) {
	start := time.Now()

	history, err := e.history.GetHistory(ctx, p.ProductID)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordForecastError("history")
		}
		return nil, err
	}

	base, err := e.forecaster.Forecast(ctx, p.ProductID, history, p.Horizon)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordForecastError("unknown_product")
		}
		return nil, err
	}

	adjustments := e.collectAdjustments(ctx, p.ProductID, p.StoreID)

	sum := 0.0
	absSum := 0.0
	for _, v := range adjustments {
		sum += v
		absSum += math.Abs(v)
	}

	final := base.PointEstimate * (1 + sum)
	if final < 0 {
		final = 0
	}

	margin := base.PointEstimate * e.cfg.BaseMargin * (1 + absSum) * e.cfg.ZScore
	lower := final - margin
	if lower < 0 {
		lower = 0
	}

	res := &models.ForecastResult{
		ProductID:     p.ProductID,
		StoreID:       p.StoreID,
		Horizon:       string(p.Horizon),
		BaseForecast:  base.PointEstimate,
		Method:        base.Method,
		Adjustments:   adjustments,
		FinalForecast: final,
		Interval: models.ConfidenceInterval{
			Lower: lower,
			Upper: final + margin,
			Level: e.cfg.Level,
		},
		GeneratedAt: time.Now().UTC(),
	}

	if e.flog != nil {
		if err := e.flog.Record(ctx, res); err != nil && e.l != nil {
			e.l.Warn("failed to record forecast",
				applogger.String("product", p.ProductID), applogger.Error(err))
		}
	}
	if e.metrics != nil {
		e.metrics.ObserveForecast(base.Method, time.Since(start).Seconds())
	}
	return res, nil
}

// collectAdjustments fans adjusters out in parallel under a shared timeout.
// An adjuster that errors or misses the deadline contributes zero.
func (e *ForecastEngine) collectAdjustments(ctx context.Context, productID, storeID string) map[models.AdjustmentSource]float64 {
	out := map[models.AdjustmentSource]float64{
		models.SourceSocial:  0,
		models.SourceWeather: 0,
		models.SourceEvent:   0,
	}
	if len(e.adjusters) == 0 {
		return out
	}

	cctx, cancel := context.WithTimeout(ctx, e.cfg.SignalTimeout)
	defer cancel()

	results := make(chan models.SignalAdjustment, len(e.adjusters))
	var wg sync.WaitGroup
	for _, adj := range e.adjusters {
		wg.Add(1)
		go func(a domsvc.SignalAdjuster) {
			defer wg.Done()
			sa, err := a.Adjust(cctx, productID, storeID)
			if err != nil {
				if e.l != nil {
					e.l.Warn("signal adjuster failed",
						applogger.String("source", string(a.Source())),
						applogger.Error(err))
				}
				return
			}
			results <- sa
		}(adj)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-cctx.Done():
		if e.l != nil {
			e.l.Warn("signal collection timed out",
				applogger.String("product", productID),
				applogger.Duration("timeout", e.cfg.SignalTimeout))
		}
	}

	// The channel is buffered to len(adjusters), so laggards can still
	// complete their sends after a timeout without blocking or panicking.
	for {
		select {
		case sa := <-results:
			out[sa.Source] = sa.Value
		default:
			return out
		}
	}
}
