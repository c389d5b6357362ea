package models

import "time"

// SalesEvent is a single point-of-sale transaction line.
type SalesEvent struct {
	ProductID string
	StoreID   string
	Timestamp int64 // unix seconds
	Quantity  float64
	UnitPrice float64
}

// TimeSeriesPoint is one calendar day of observed demand for a product.
// Series are ordered, one point per day, demand never negative.
type TimeSeriesPoint struct {
	Date   time.Time
	Demand float64
}
