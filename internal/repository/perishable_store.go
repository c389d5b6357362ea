package repository

import (
	"context"
	"sort"
	"sync"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
)

// MemoryPerishableStore tracks perishable inventory state in memory.
type MemoryPerishableStore struct {
	mu     sync.RWMutex
	states map[string]models.PerishableState
}

func NewMemoryPerishableStore() *MemoryPerishableStore {
	return &MemoryPerishableStore{states: make(map[string]models.PerishableState)}
}

func perishableKey(productID, storeID string) string {
	return productID + "|" + storeID
}

func (s *MemoryPerishableStore) Get(_ context.Context, productID, storeID string) (models.PerishableState, bool, error) {
	s.mu.RLock()
	st, ok := s.states[perishableKey(productID, storeID)]
	s.mu.RUnlock()
	return st, ok, nil
}

func (s *MemoryPerishableStore) ListByStore(_ context.Context, storeID string) ([]models.PerishableState, error) {
	s.mu.RLock()
	out := make([]models.PerishableState, 0, len(s.states))
	for _, st := range s.states {
		if st.StoreID == storeID {
			out = append(out, st)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *MemoryPerishableStore) All(_ context.Context) ([]models.PerishableState, error) {
	s.mu.RLock()
	out := make([]models.PerishableState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (s *MemoryPerishableStore) Put(_ context.Context, st models.PerishableState) error {
	s.mu.Lock()
	s.states[perishableKey(st.ProductID, st.StoreID)] = st
	s.mu.Unlock()
	return nil
}

func (s *MemoryPerishableStore) Delete(_ context.Context, productID, storeID string) error {
	s.mu.Lock()
	delete(s.states, perishableKey(productID, storeID))
	s.mu.Unlock()
	return nil
}

var _ domrepo.PerishableStore = (*MemoryPerishableStore)(nil)
