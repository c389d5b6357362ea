package service

import (
	"context"

	"RetailPulse/internal/domain/models"
	"RetailPulse/internal/domain/repository"
)

// BaseForecaster produces a demand point estimate from history alone.
type BaseForecaster interface {
	Forecast(ctx context.Context, productID string, history []models.TimeSeriesPoint, horizon repository.Horizon) (models.BaseForecast, error)
}

// SignalAdjuster converts one external signal into a bounded fractional
// adjustment. Missing data yields a zero adjustment, never an error.
type SignalAdjuster interface {
	Source() models.AdjustmentSource
	Adjust(ctx context.Context, productID, storeID string) (models.SignalAdjustment, error)
}

// SocialSignalProvider returns the latest social reading for a product.
// The second return value is false when no fresh reading exists.
type SocialSignalProvider interface {
	Social(ctx context.Context, productID string) (models.SocialReading, bool, error)
}

// WeatherSignalProvider returns the latest weather reading for a store.
type WeatherSignalProvider interface {
	Weather(ctx context.Context, storeID string) (models.WeatherReading, bool, error)
}

// EventSignalProvider returns upcoming scheduled events for a product.
type EventSignalProvider interface {
	Events(ctx context.Context, productID string) (models.EventReading, bool, error)
}
