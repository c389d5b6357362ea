package models

import "time"

// SocialReading is the latest social signal snapshot for a product.
type SocialReading struct {
	ProductID  string    `json:"product_id"`
	Sentiment  float64   `json:"sentiment"` // [-1, 1]
	Trending   float64   `json:"trending"`  // [0, 1]
	Mentions   int       `json:"mentions"`  // >= 0
	ObservedAt time.Time `json:"observed_at"`
}

// WeatherReading is the latest weather snapshot for a store location.
// Temperature and humidity are normalized against a midpoint of 50.
type WeatherReading struct {
	StoreID       string    `json:"store_id"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"` // >= 0
	ObservedAt    time.Time `json:"observed_at"`
}

// EventReading summarizes upcoming scheduled events relevant to a product.
type EventReading struct {
	ProductID  string    `json:"product_id"`
	Count      int       `json:"count"`  // >= 0
	Impact     float64   `json:"impact"` // [-0.3, 0.3] per event
	ObservedAt time.Time `json:"observed_at"`
}
