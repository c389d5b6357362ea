package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"RetailPulse/internal/domain/models"
	"RetailPulse/internal/domain/repository"
	pkgkafka "RetailPulse/pkg/kafka"
)

// ClickHouseSalesStorage implements Storage for ClickHouse.
type ClickHouseSalesStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseSalesStorage creates ClickHouse sales storage.
func NewClickHouseSalesStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseSalesStorage{db: db, table: table}
}

func (s *ClickHouseSalesStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseSalesStorage) Store(ctx context.Context, e *models.SalesEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, product_id, store_id, qty, price, source, event_id) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	// Idempotency key derived from product+store+timestamp
	eventID := fmt.Sprintf("%s-%s-%d", e.ProductID, e.StoreID, e.Timestamp)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(e.Timestamp, 0),
		e.ProductID,
		e.StoreID,
		e.Quantity,
		e.UnitPrice,
		"posfeed",
		eventID,
	)
	return err
}

func (s *ClickHouseSalesStorage) StoreBatch(ctx context.Context, events []*models.SalesEvent) error {
	if len(events) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, e := range events[start:end] {
			if e == nil || e.ProductID == "" || e.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%s-%d", e.ProductID, e.StoreID, e.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(e.Timestamp, 0),
				e.ProductID,
				e.StoreID,
				e.Quantity,
				e.UnitPrice,
				"posfeed",
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, product_id, store_id, qty, price, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseSalesStorage) QueryDailyDemand(ctx context.Context, productID string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	q := fmt.Sprintf(`
        SELECT toDate(ts) AS day, sum(qty) AS demand
        FROM %s
        WHERE product_id = ? AND ts >= ? AND ts <= ?
        GROUP BY day
        ORDER BY day ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily demand: %w", err)
	}
	defer rows.Close()

	var points []models.TimeSeriesPoint
	for rows.Next() {
		var p models.TimeSeriesPoint
		if err := rows.Scan(&p.Date, &p.Demand); err != nil {
			return nil, fmt.Errorf("scan daily demand: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *ClickHouseSalesStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSalesStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaSalesPublisher implements Publisher for Kafka.
type KafkaSalesPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSalesPublisher creates a Kafka sales publisher.
func NewKafkaSalesPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSalesPublisher{producer: producer, topic: topic}
}

func (p *KafkaSalesPublisher) Publish(ctx context.Context, e *models.SalesEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.ProductID), map[string]interface{}{
		"product_id": e.ProductID,
		"store_id":   e.StoreID,
		"t":          e.Timestamp,
		"qty":        e.Quantity,
		"price":      e.UnitPrice,
	})
}

func (p *KafkaSalesPublisher) PublishBatch(ctx context.Context, events []*models.SalesEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = pkgkafka.Message{
			Key: []byte(e.ProductID),
			Value: map[string]interface{}{
				"product_id": e.ProductID,
				"store_id":   e.StoreID,
				"t":          e.Timestamp,
				"qty":        e.Quantity,
				"price":      e.UnitPrice,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSalesPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
