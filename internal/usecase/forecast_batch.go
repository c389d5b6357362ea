package usecase

import (
	"context"
	"sync"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	applogger "RetailPulse/pkg/logger"
)

const defaultBatchWorkers = 8

// BatchForecaster runs the engine across many products with partial
// success: one failing product lands in the Errors map, the rest proceed.
type BatchForecaster struct {
	engine  *ForecastEngine
	workers int
	l       *applogger.Logger
}

func NewBatchForecaster(engine *ForecastEngine, workers int, l *applogger.Logger) *BatchForecaster {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	return &BatchForecaster{engine: engine, workers: workers, l: l}
}

func (b *BatchForecaster) Run(ctx context.Context, productIDs []string, storeID string, horizon domrepo.Horizon) (*models.BatchForecast, error) {
	out := &models.BatchForecast{
		Horizon:     string(horizon),
		GeneratedAt: time.Now().UTC(),
	}
	if len(productIDs) == 0 {
		return out, nil
	}

	type item struct {
		id  string
		res *models.ForecastResult
		err error
	}

	jobs := make(chan string)
	items := make(chan item, len(productIDs))

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res, err := b.engine.Forecast(ctx, ForecastParams{
					ProductID: id,
					StoreID:   storeID,
					Horizon:   horizon,
				})
				items <- item{id: id, res: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range productIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(items)
	}()

	for it := range items {
		if it.err != nil {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[it.id] = it.err.Error()
			if b.l != nil {
				b.l.Warn("batch forecast item failed",
					applogger.String("product", it.id), applogger.Error(it.err))
			}
			continue
		}
		out.Results = append(out.Results, it.res)
	}

	if b.l != nil {
		b.l.Info("batch forecast completed",
			applogger.Int("requested", len(productIDs)),
			applogger.Int("succeeded", len(out.Results)),
			applogger.Int("failed", len(out.Errors)))
	}
	return out, nil
}
