package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	pkgch "RetailPulse/pkg/clickhouse"
	applogger "RetailPulse/pkg/logger"
)

// CHHistoryStore implements HistoryProvider backed by ClickHouse.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client, table string) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) GetHistory(ctx context.Context, productID string) ([]models.TimeSeriesPoint, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT toDate(ts) AS day, sum(qty) AS demand
        FROM %s
        WHERE product_id = ?
        GROUP BY day
        ORDER BY day ASC
    `, s.table)
	points, err := s.queryPoints(ctx, q, productID)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_history query error",
				applogger.String("product", productID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	if len(points) == 0 {
		return nil, domrepo.ErrUnknownProduct
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_history ok",
			applogger.String("product", productID),
			applogger.Int("rows", len(points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return points, nil
}

func (s *CHHistoryStore) GetRecentHistory(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error) {
	if days <= 0 {
		days = 30
	}
	q := fmt.Sprintf(`
        SELECT toDate(ts) AS day, sum(qty) AS demand
        FROM %s
        WHERE product_id = ? AND ts >= now() - INTERVAL ? DAY
        GROUP BY day
        ORDER BY day ASC
    `, s.table)
	points, err := s.queryPoints(ctx, q, productID, days)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_recent_history query error",
				applogger.String("product", productID),
				applogger.Int("days", days),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get recent history: %w", err)
	}
	return points, nil
}

func (s *CHHistoryStore) ListProducts(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT product_id FROM %s ORDER BY product_id", s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *CHHistoryStore) queryPoints(ctx context.Context, q string, args ...interface{}) ([]models.TimeSeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]models.TimeSeriesPoint, 0, 365)
	for rows.Next() {
		var p models.TimeSeriesPoint
		if err := rows.Scan(&p.Date, &p.Demand); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

var _ domrepo.HistoryProvider = (*CHHistoryStore)(nil)

// CHForecastLog records generated forecasts in ClickHouse for accuracy
// review.
type CHForecastLog struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHForecastLog(ch *pkgch.Client, table string, l *applogger.Logger) *CHForecastLog {
	return &CHForecastLog{db: ch.DB(), table: table, l: l}
}

func (f *CHForecastLog) Record(ctx context.Context, res *models.ForecastResult) error {
	adjustments, err := json.Marshal(res.Adjustments)
	if err != nil {
		adjustments = []byte("{}")
	}
	q := fmt.Sprintf(`
        INSERT INTO %s (generated_at, product_id, store_id, horizon, method, base_forecast, final_forecast, lower, upper, adjustments)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, f.table)
	_, err = f.db.ExecContext(ctx, q,
		res.GeneratedAt,
		res.ProductID,
		res.StoreID,
		res.Horizon,
		res.Method,
		res.BaseForecast,
		res.FinalForecast,
		res.Interval.Lower,
		res.Interval.Upper,
		string(adjustments),
	)
	if err != nil {
		return fmt.Errorf("record forecast: %w", err)
	}
	return nil
}

var _ domrepo.ForecastLog = (*CHForecastLog)(nil)
