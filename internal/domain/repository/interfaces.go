package repository

import (
	"context"
	"time"

	"RetailPulse/internal/domain/models"
)

// SalesStream is a live feed of point-of-sale events.
type SalesStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.SalesEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards sales events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, e *models.SalesEvent) error
	PublishBatch(ctx context.Context, events []*models.SalesEvent) error
	Close() error
}

// Storage persists raw sales events and serves aggregates.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, e *models.SalesEvent) error
	StoreBatch(ctx context.Context, events []*models.SalesEvent) error
	QueryDailyDemand(ctx context.Context, productID string, from, to time.Time) ([]models.TimeSeriesPoint, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordEventIngested(backend, productID string)
	RecordError(kind string)
	RecordDailyDemand(productID string, quantity float64)
	RecordLatency(op string, seconds float64)
}
