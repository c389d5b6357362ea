package models

import "time"

// ThresholdType identifies a replenishment threshold kind.
type ThresholdType string

const (
	ThresholdReorderPoint ThresholdType = "reorder_point"
	ThresholdSafetyStock  ThresholdType = "safety_stock"
	ThresholdMaxStock     ThresholdType = "max_stock"
)

// ThresholdFactors records the inputs a threshold was derived from.
type ThresholdFactors struct {
	DemandVariability float64 `json:"demand_variability"`
	SeasonalityFactor float64 `json:"seasonality_factor"`
	LeadTimeDays      int     `json:"lead_time_days"`
	ServiceLevel      float64 `json:"service_level"`
}

// ThresholdState is the latest threshold for (product, store, type).
// A recalculation replaces the previous state, it is never appended.
type ThresholdState struct {
	ProductID       string           `json:"product_id"`
	StoreID         string           `json:"store_id"`
	Type            ThresholdType    `json:"threshold_type"`
	CurrentValue    int              `json:"current_value"`
	CalculatedValue int              `json:"calculated_value"`
	Factors         ThresholdFactors `json:"factors"`
	ConfidenceScore float64          `json:"confidence_score"` // [0, 1]
	Reason          string           `json:"reason"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PerishableStatus is the markdown lifecycle state of a perishable unit.
type PerishableStatus string

const (
	PerishableFresh    PerishableStatus = "fresh"
	PerishableEligible PerishableStatus = "markdown_eligible"
	PerishableExpired  PerishableStatus = "expired"
)

// PerishableState tracks a perishable inventory position at one store.
// Destroyed when quantity reaches 0 or the unit expires unsold.
type PerishableState struct {
	ProductID       string           `json:"product_id"`
	StoreID         string           `json:"store_id"`
	CurrentQuantity float64          `json:"current_quantity"` // >= 0
	DaysUntilExpiry int              `json:"days_until_expiry"`
	Status          PerishableStatus `json:"status"`
}

// MarkdownDecision is the outcome of a markdown trigger. Triggering twice
// with identical inputs yields an identical decision.
type MarkdownDecision struct {
	ProductID       string    `json:"product_id"`
	StoreID         string    `json:"store_id"`
	Eligible        bool      `json:"is_markdown_eligible"`
	Percentage      float64   `json:"markdown_percentage"` // [0, 1]
	DaysUntilExpiry int       `json:"days_until_expiry"`
	DecidedAt       time.Time `json:"decided_at"`
}
