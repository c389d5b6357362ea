package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	"RetailPulse/pkg/cache"
)

// MemoryThresholdStore keeps the latest threshold per (product, store,
// type) in memory, with optional write-through to a shared cache so other
// instances can read current values.
type MemoryThresholdStore struct {
	mu     sync.RWMutex
	states map[string]models.ThresholdState

	cache    cache.Service // optional
	cacheTTL time.Duration
}

func NewMemoryThresholdStore(c cache.Service, cacheTTL time.Duration) *MemoryThresholdStore {
	if cacheTTL <= 0 {
		cacheTTL = 48 * time.Hour
	}
	return &MemoryThresholdStore{
		states:   make(map[string]models.ThresholdState),
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func thresholdKey(productID, storeID string, t models.ThresholdType) string {
	return cache.GenerateKeyWithParams("threshold", productID, storeID, string(t))
}

func (s *MemoryThresholdStore) Put(ctx context.Context, st models.ThresholdState) error {
	key := thresholdKey(st.ProductID, st.StoreID, st.Type)

	s.mu.Lock()
	s.states[key] = st
	s.mu.Unlock()

	if s.cache != nil {
		// Write-through is best effort; memory stays authoritative.
		_ = s.cache.Set(ctx, key, st, s.cacheTTL)
	}
	return nil
}

func (s *MemoryThresholdStore) Get(ctx context.Context, productID, storeID string, t models.ThresholdType) (models.ThresholdState, bool, error) {
	key := thresholdKey(productID, storeID, t)

	s.mu.RLock()
	st, ok := s.states[key]
	s.mu.RUnlock()
	if ok {
		return st, true, nil
	}

	if s.cache != nil {
		var cached models.ThresholdState
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.mu.Lock()
			s.states[key] = cached
			s.mu.Unlock()
			return cached, true, nil
		}
	}
	return models.ThresholdState{}, false, nil
}

func (s *MemoryThresholdStore) List(_ context.Context, productID, storeID string) ([]models.ThresholdState, error) {
	s.mu.RLock()
	out := make([]models.ThresholdState, 0, 3)
	for _, st := range s.states {
		if st.ProductID == productID && st.StoreID == storeID {
			out = append(out, st)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

var _ domrepo.ThresholdStore = (*MemoryThresholdStore)(nil)
