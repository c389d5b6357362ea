package usecase

import (
	"context"
	"encoding/json"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	pkgkafka "RetailPulse/pkg/kafka"
)

// KafkaSalesHandler consumes sales events off the broker and writes them
// to storage.
type KafkaSalesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaSalesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaSalesHandler {
	return &KafkaSalesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaSalesHandler) Topic() string { return h.topic }

// incoming message schema: {product_id, store_id, t, qty, price}
func (h *KafkaSalesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ProductID string  `json:"product_id"`
		StoreID   string  `json:"store_id"`
		T         int64   `json:"t"`
		Qty       float64 `json:"qty"`
		Price     float64 `json:"price"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from sale time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.SalesEvent{
		ProductID: m.ProductID,
		StoreID:   m.StoreID,
		Timestamp: m.T,
		Quantity:  m.Qty,
		UnitPrice: m.Price,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventIngested("clickhouse", m.ProductID)
	h.metrics.RecordDailyDemand(m.ProductID, m.Qty)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSalesHandler)(nil)
