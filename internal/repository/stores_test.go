package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
)

func TestMemoryHistoryStoreSortsAndCopies(t *testing.T) {
	s := NewMemoryHistoryStore()
	d1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	// Loaded out of order
	s.Load("p1", []models.TimeSeriesPoint{
		{Date: d3, Demand: 3},
		{Date: d1, Demand: 1},
		{Date: d2, Demand: 2},
	})

	pts, err := s.GetHistory(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 3 || !pts[0].Date.Equal(d1) || !pts[2].Date.Equal(d3) {
		t.Fatalf("history not chronological: %+v", pts)
	}

	// Mutating the returned slice must not affect the store.
	pts[0].Demand = 999
	again, _ := s.GetHistory(context.Background(), "p1")
	if again[0].Demand != 1 {
		t.Fatal("returned slice aliases internal storage")
	}
}

func TestMemoryHistoryStoreUnknownProduct(t *testing.T) {
	s := NewMemoryHistoryStore()
	if _, err := s.GetHistory(context.Background(), "ghost"); !errors.Is(err, domrepo.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
	if _, err := s.GetRecentHistory(context.Background(), "ghost", 30); !errors.Is(err, domrepo.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestMemoryHistoryStoreRecentWindow(t *testing.T) {
	s := NewMemoryHistoryStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		s.Append("p1", models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Demand: float64(i)})
	}

	recent, err := s.GetRecentHistory(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 30 {
		t.Fatalf("recent = %d points, want 30", len(recent))
	}
	if recent[len(recent)-1].Demand != 99 {
		t.Fatalf("last point = %v, want the newest (99)", recent[len(recent)-1].Demand)
	}
}

func TestMemoryHistoryStoreListProducts(t *testing.T) {
	s := NewMemoryHistoryStore()
	s.Append("b", models.TimeSeriesPoint{Demand: 1})
	s.Append("a", models.TimeSeriesPoint{Demand: 1})

	ids, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("products = %v, want [a b]", ids)
	}
}

func TestMemoryThresholdStoreReplaces(t *testing.T) {
	s := NewMemoryThresholdStore(nil, 0)
	ctx := context.Background()

	put := func(v int) {
		if err := s.Put(ctx, models.ThresholdState{
			ProductID: "p1", StoreID: "main", Type: models.ThresholdReorderPoint,
			CurrentValue: v, CalculatedValue: v,
		}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	put(10)
	put(20)

	st, ok, err := s.Get(ctx, "p1", "main", models.ThresholdReorderPoint)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if st.CurrentValue != 20 {
		t.Fatalf("value = %d, want latest write 20", st.CurrentValue)
	}

	list, err := s.List(ctx, "p1", "main")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d entries, want 1 (writes replace)", len(list))
	}
}

func TestMemoryThresholdStoreMiss(t *testing.T) {
	s := NewMemoryThresholdStore(nil, 0)
	_, ok, err := s.Get(context.Background(), "nope", "main", models.ThresholdSafetyStock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("miss should report ok=false")
	}
}

func TestMemoryPerishableStoreLifecycle(t *testing.T) {
	s := NewMemoryPerishableStore()
	ctx := context.Background()

	s.Put(ctx, models.PerishableState{ProductID: "b", StoreID: "main", CurrentQuantity: 1})
	s.Put(ctx, models.PerishableState{ProductID: "a", StoreID: "main", CurrentQuantity: 2})
	s.Put(ctx, models.PerishableState{ProductID: "c", StoreID: "other", CurrentQuantity: 3})

	byStore, err := s.ListByStore(ctx, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byStore) != 2 || byStore[0].ProductID != "a" || byStore[1].ProductID != "b" {
		t.Fatalf("byStore = %+v, want [a b]", byStore)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d entries, want 3", len(all))
	}

	if err := s.Delete(ctx, "a", "main"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a", "main"); ok {
		t.Fatal("deleted entry still present")
	}
}
