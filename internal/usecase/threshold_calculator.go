package usecase

import (
	"context"
	"math"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	fmetrics "RetailPulse/internal/service/metrics"
	"RetailPulse/internal/services/forecast"
	applogger "RetailPulse/pkg/logger"
)

const (
	// variabilityWindowDays is how far back demand variability looks.
	variabilityWindowDays = 90

	// defaultVariability is assumed when the series is too short or flat
	// for a coefficient of variation.
	defaultVariability = 0.2

	minVariability = 0.1
	maxVariability = 0.3

	defaultServiceLevel = 0.95

	// confidenceFullHistoryDays is the history length at which the
	// confidence score reaches its cap.
	confidenceFullHistoryDays = 360.0
	confidenceCap             = 0.95
)

// ThresholdCalculator derives reorder points and safety stock from recent
// demand, and applies manual overrides with an audit reason.
type ThresholdCalculator struct {
	history domrepo.HistoryProvider
	store   domrepo.ThresholdStore
	metrics *fmetrics.ForecastMetrics
	l       *applogger.Logger
	now     func() time.Time
}

func NewThresholdCalculator(history domrepo.HistoryProvider, store domrepo.ThresholdStore, m *fmetrics.ForecastMetrics, l *applogger.Logger) *ThresholdCalculator {
	return &ThresholdCalculator{
		history: history,
		store:   store,
		metrics: m,
		l:       l,
		now:     time.Now,
	}
}

// Recalculate rederives all thresholds for a product at a store and
// replaces the stored states. Reason is recorded for the audit trail.
func (c *ThresholdCalculator) Recalculate(ctx context.Context, productID, storeID string, leadTimeDays int, reason string) ([]models.ThresholdState, error) {
	if leadTimeDays <= 0 {
		leadTimeDays = 7
	}
	if reason == "" {
		reason = "scheduled recalculation"
	}

	recent, err := c.history.GetRecentHistory(ctx, productID, variabilityWindowDays)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, domrepo.ErrUnknownProduct
	}

	demands := make([]float64, len(recent))
	maxDaily := 0.0
	for i, p := range recent {
		demands[i] = p.Demand
		if p.Demand > maxDaily {
			maxDaily = p.Demand
		}
	}
	avgDaily := forecast.Mean(demands)

	variability := defaultVariability
	if cov, ok := forecast.CoefficientOfVariation(demands); ok {
		variability = math.Min(math.Max(cov, minVariability), maxVariability)
	}

	now := c.now().UTC()
	seasonality := forecast.SeasonalityFactor(now.YearDay())
	lead := float64(leadTimeDays)

	baseThreshold := avgDaily * lead
	reorder := int(math.Round(baseThreshold * seasonality * (1 + variability)))

	safety := int(math.Round((maxDaily - avgDaily) * lead))
	if safety < 0 {
		safety = 0
	}

	// Ceiling: one replenishment cycle of average demand above reorder.
	maxStock := reorder + int(math.Round(baseThreshold))

	confidence := math.Min(confidenceCap, 0.5+float64(len(recent))/confidenceFullHistoryDays)

	factors := models.ThresholdFactors{
		DemandVariability: variability,
		SeasonalityFactor: seasonality,
		LeadTimeDays:      leadTimeDays,
		ServiceLevel:      defaultServiceLevel,
	}

	states := []models.ThresholdState{
		c.buildState(productID, storeID, models.ThresholdReorderPoint, reorder, factors, confidence, reason, now),
		c.buildState(productID, storeID, models.ThresholdSafetyStock, safety, factors, confidence, reason, now),
		c.buildState(productID, storeID, models.ThresholdMaxStock, maxStock, factors, confidence, reason, now),
	}

	for _, st := range states {
		if err := c.store.Put(ctx, st); err != nil {
			return nil, err
		}
	}

	if c.metrics != nil {
		c.metrics.RecordThresholdRecalc()
	}
	if c.l != nil {
		c.l.Info("thresholds recalculated",
			applogger.String("product", productID),
			applogger.String("store", storeID),
			applogger.Int("reorder_point", reorder),
			applogger.Int("safety_stock", safety),
			applogger.Float64("confidence", confidence))
	}
	return states, nil
}

func (c *ThresholdCalculator) buildState(productID, storeID string, t models.ThresholdType, value int, factors models.ThresholdFactors, confidence float64, reason string, now time.Time) models.ThresholdState {
	return models.ThresholdState{
		ProductID:       productID,
		StoreID:         storeID,
		Type:            t,
		CurrentValue:    value,
		CalculatedValue: value,
		Factors:         factors,
		ConfidenceScore: confidence,
		Reason:          reason,
		UpdatedAt:       now,
	}
}

// Override pins a threshold to a manual value. The calculated value and
// factors are preserved so the deviation stays visible. Reason is
// mandatory for the audit trail.
func (c *ThresholdCalculator) Override(ctx context.Context, productID, storeID string, t models.ThresholdType, value int, reason string) (models.ThresholdState, error) {
	st, ok, err := c.store.Get(ctx, productID, storeID, t)
	if err != nil {
		return models.ThresholdState{}, err
	}
	if !ok {
		st = models.ThresholdState{
			ProductID:       productID,
			StoreID:         storeID,
			Type:            t,
			CalculatedValue: value,
		}
	}

	st.CurrentValue = value
	st.Reason = "manual override: " + reason
	st.UpdatedAt = c.now().UTC()

	if err := c.store.Put(ctx, st); err != nil {
		return models.ThresholdState{}, err
	}
	if c.l != nil {
		c.l.Info("threshold overridden",
			applogger.String("product", productID),
			applogger.String("store", storeID),
			applogger.String("type", string(t)),
			applogger.Int("value", value),
			applogger.String("reason", reason))
	}
	return st, nil
}

// List returns the current thresholds for a product at a store.
func (c *ThresholdCalculator) List(ctx context.Context, productID, storeID string) ([]models.ThresholdState, error) {
	return c.store.List(ctx, productID, storeID)
}
