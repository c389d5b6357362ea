package repository

import (
	"context"
	"sort"
	"sync"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
)

// MemoryHistoryStore is an in-memory HistoryProvider used when no
// ClickHouse backend is configured, and by tests.
type MemoryHistoryStore struct {
	mu     sync.RWMutex
	series map[string][]models.TimeSeriesPoint
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{series: make(map[string][]models.TimeSeriesPoint)}
}

// Load replaces the series for a product. Points are sorted by date.
func (s *MemoryHistoryStore) Load(productID string, points []models.TimeSeriesPoint) {
	cp := make([]models.TimeSeriesPoint, len(points))
	copy(cp, points)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })

	s.mu.Lock()
	s.series[productID] = cp
	s.mu.Unlock()
}

// Append adds a single day of demand to a product's series.
func (s *MemoryHistoryStore) Append(productID string, p models.TimeSeriesPoint) {
	s.mu.Lock()
	s.series[productID] = append(s.series[productID], p)
	s.mu.Unlock()
}

func (s *MemoryHistoryStore) GetHistory(_ context.Context, productID string) ([]models.TimeSeriesPoint, error) {
	s.mu.RLock()
	pts, ok := s.series[productID]
	s.mu.RUnlock()
	if !ok || len(pts) == 0 {
		return nil, domrepo.ErrUnknownProduct
	}
	out := make([]models.TimeSeriesPoint, len(pts))
	copy(out, pts)
	return out, nil
}

func (s *MemoryHistoryStore) GetRecentHistory(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error) {
	pts, err := s.GetHistory(ctx, productID)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(pts) > days {
		pts = pts[len(pts)-days:]
	}
	return pts, nil
}

func (s *MemoryHistoryStore) ListProducts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

var _ domrepo.HistoryProvider = (*MemoryHistoryStore)(nil)
