package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	ProductID string `param:"product_id" query:"product_id" json:"product_id" validate:"required"`
	StoreID   string `query:"store_id" json:"store_id" default:"main"`
	Horizon   string `query:"horizon" json:"horizon" default:"month" validate:"oneof=week month quarter year"`
}

type BatchForecastRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,max=500,dive,required"`
	StoreID    string   `json:"store_id" default:"main"`
	Horizon    string   `json:"horizon" default:"month" validate:"oneof=week month quarter year"`
}

type ThresholdQueryRequest struct {
	ProductID string `param:"product_id" json:"product_id" validate:"required"`
	StoreID   string `query:"store_id" json:"store_id" default:"main"`
}

type ThresholdRecalcRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	StoreID      string `json:"store_id" default:"main"`
	LeadTimeDays int    `json:"lead_time_days" default:"7" validate:"gte=1,lte=60"`
}

type ThresholdOverrideRequest struct {
	ProductID string `param:"product_id" json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" default:"main"`
	Type      string `json:"threshold_type" validate:"required,oneof=reorder_point safety_stock max_stock"`
	Value     int    `json:"value" validate:"gte=0"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

type PerishablesRequest struct {
	StoreID string `param:"store_id" json:"store_id" validate:"required"`
}

type MarkdownTriggerRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" default:"main"`
}

type SocialSignalRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Sentiment float64 `json:"sentiment" validate:"gte=-1,lte=1"`
	Trending  float64 `json:"trending" validate:"gte=0,lte=1"`
	Mentions  int     `json:"mentions" validate:"gte=0"`
}

type WeatherSignalRequest struct {
	StoreID       string  `json:"store_id" validate:"required"`
	Temperature   float64 `json:"temperature" validate:"gte=-60,lte=150"`
	Humidity      float64 `json:"humidity" validate:"gte=0,lte=100"`
	Precipitation float64 `json:"precipitation" validate:"gte=0"`
}

type EventSignalRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Count     int     `json:"count" validate:"gte=0"`
	Impact    float64 `json:"impact" validate:"gte=-0.3,lte=0.3"`
}
