package repository

import (
	"context"
	"errors"

	"RetailPulse/internal/domain/models"
)

// ErrUnknownProduct is the only history failure surfaced to callers:
// the product has no sales history at all. Everything else degrades.
var ErrUnknownProduct = errors.New("unknown product: no sales history")

// ErrUnknownPerishable signals a markdown trigger for untracked inventory.
var ErrUnknownPerishable = errors.New("unknown perishable: no inventory state")

// HistoryProvider supplies per-product daily demand series, chronological,
// one point per day.
type HistoryProvider interface {
	GetHistory(ctx context.Context, productID string) ([]models.TimeSeriesPoint, error)
	GetRecentHistory(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error)
	ListProducts(ctx context.Context) ([]string, error)
}

// ForecastLog persists generated forecasts for later accuracy review.
type ForecastLog interface {
	Record(ctx context.Context, res *models.ForecastResult) error
}

// ThresholdStore keeps the latest ThresholdState per (product, store, type).
// Writes replace; only the latest value is retained.
type ThresholdStore interface {
	Put(ctx context.Context, st models.ThresholdState) error
	Get(ctx context.Context, productID, storeID string, t models.ThresholdType) (models.ThresholdState, bool, error)
	List(ctx context.Context, productID, storeID string) ([]models.ThresholdState, error)
}

// PerishableStore supplies current perishable inventory state.
type PerishableStore interface {
	Get(ctx context.Context, productID, storeID string) (models.PerishableState, bool, error)
	ListByStore(ctx context.Context, storeID string) ([]models.PerishableState, error)
	All(ctx context.Context) ([]models.PerishableState, error)
	Put(ctx context.Context, st models.PerishableState) error
	Delete(ctx context.Context, productID, storeID string) error
}
