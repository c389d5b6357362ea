package models

import "time"

// AdjustmentSource identifies the external signal behind an adjustment.
type AdjustmentSource string

const (
	SourceSocial  AdjustmentSource = "social"
	SourceWeather AdjustmentSource = "weather"
	SourceEvent   AdjustmentSource = "event"
)

// SignalAdjustment is a bounded fractional modifier in [-1, 1].
// Adjustments from different sources combine additively.
type SignalAdjustment struct {
	Source AdjustmentSource
	Value  float64
}

// BaseForecast is the demand estimate from history alone, before any
// signal adjustment. PointEstimate is mean daily-equivalent demand.
type BaseForecast struct {
	ProductID     string
	HorizonDays   int
	PointEstimate float64 // >= 0
	Method        string  // "seasonal_trend", "moving_average", "mean"
}

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// ForecastResult is the composed forecast for one product.
// Invariant: FinalForecast = BaseForecast * (1 + sum of adjustments),
// floored at 0, and Interval.Lower <= FinalForecast <= Interval.Upper.
type ForecastResult struct {
	ProductID     string                       `json:"product_id"`
	StoreID       string                       `json:"store_id"`
	Horizon       string                       `json:"horizon"`
	BaseForecast  float64                      `json:"base_forecast"`
	Method        string                       `json:"method"`
	Adjustments   map[AdjustmentSource]float64 `json:"adjustments"`
	FinalForecast float64                      `json:"final_forecast"`
	Interval      ConfidenceInterval           `json:"confidence_interval"`
	GeneratedAt   time.Time                    `json:"generated_at"`
}

// BatchForecast reports per-product outcomes of a batch run. One product
// failing never aborts the batch; its reason lands in Errors instead.
type BatchForecast struct {
	Horizon     string                     `json:"horizon"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Results     []*ForecastResult          `json:"results"`
	Errors      map[string]string          `json:"errors,omitempty"`
}
