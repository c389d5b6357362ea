package usecase

import (
	"context"
	"fmt"
	"time"

	"RetailPulse/internal/domain/models"
	drepo "RetailPulse/internal/domain/repository"
)

// SalesProcessor routes incoming sales events to the configured backend,
// either straight into storage or through the broker for the consumer
// group to land.
type SalesProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

func NewSalesProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *SalesProcessor {
	return &SalesProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single sales event to the configured backend.
func (p *SalesProcessor) Process(ctx context.Context, e *models.SalesEvent) error {
	if e == nil {
		return fmt.Errorf("sales event is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, e)
	case "clickhouse":
		err = p.store.Store(ctx, e)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process sales event: %w", err)
	}

	p.metrics.RecordEventIngested(p.backend, e.ProductID)
	p.metrics.RecordDailyDemand(e.ProductID, e.Quantity)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple sales events in one backend call.
func (p *SalesProcessor) ProcessBatch(ctx context.Context, events []*models.SalesEvent) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, events)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, events)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process sales batch: %w", err)
	}

	for _, e := range events {
		p.metrics.RecordEventIngested(p.backend, e.ProductID)
		p.metrics.RecordDailyDemand(e.ProductID, e.Quantity)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *SalesProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
