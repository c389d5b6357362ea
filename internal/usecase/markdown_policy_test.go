package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	repo "RetailPulse/internal/repository"
)

func newTestPolicy() (*MarkdownPolicy, *repo.MemoryPerishableStore) {
	store := repo.NewMemoryPerishableStore()
	p := NewMarkdownPolicy(store, DefaultMarkdownCurve, nil, nil)
	return p, store
}

func TestPercentageFor(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{0, 0.7},
		{1, 0.6},
		{3, 0.4},
		{6, 0.1},
		{10, 0.1}, // floor
	}
	for _, tc := range cases {
		if got := DefaultMarkdownCurve.PercentageFor(tc.days); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("days %d: percentage = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(-1) != models.PerishableExpired {
		t.Fatal("negative days should be expired")
	}
	if StatusFor(0) != models.PerishableEligible || StatusFor(3) != models.PerishableEligible {
		t.Fatal("0-3 days should be markdown eligible")
	}
	if StatusFor(4) != models.PerishableFresh {
		t.Fatal("4+ days should be fresh")
	}
}

func TestTriggerUnknownPerishable(t *testing.T) {
	p, _ := newTestPolicy()
	_, err := p.Trigger(context.Background(), "ghost", "main")
	if !errors.Is(err, domrepo.ErrUnknownPerishable) {
		t.Fatalf("err = %v, want ErrUnknownPerishable", err)
	}
}

func TestTriggerEligible(t *testing.T) {
	p, store := newTestPolicy()
	store.Put(context.Background(), models.PerishableState{
		ProductID: "milk", StoreID: "main", CurrentQuantity: 5, DaysUntilExpiry: 2,
		Status: models.PerishableFresh,
	})

	d, err := p.Trigger(context.Background(), "milk", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Eligible {
		t.Fatal("2 days to expiry should be eligible")
	}
	if math.Abs(d.Percentage-0.5) > 1e-9 {
		t.Fatalf("percentage = %v, want 0.5", d.Percentage)
	}

	// Status is persisted as part of the trigger.
	st, ok, _ := store.Get(context.Background(), "milk", "main")
	if !ok || st.Status != models.PerishableEligible {
		t.Fatalf("stored status = %q, want markdown_eligible", st.Status)
	}
}

func TestTriggerIdempotent(t *testing.T) {
	p, store := newTestPolicy()
	store.Put(context.Background(), models.PerishableState{
		ProductID: "milk", StoreID: "main", CurrentQuantity: 5, DaysUntilExpiry: 1,
	})

	t1 := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return t1 }
	first, err := p.Trigger(context.Background(), "milk", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later trigger with identical inputs returns the original decision.
	p.now = func() time.Time { return t1.Add(3 * time.Hour) }
	second, err := p.Trigger(context.Background(), "milk", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("trigger not idempotent:\n%+v\n%+v", first, second)
	}

	// Once the expiry counter moves, a new decision is made.
	st, _, _ := store.Get(context.Background(), "milk", "main")
	st.DaysUntilExpiry = 0
	store.Put(context.Background(), st)

	third, err := p.Trigger(context.Background(), "milk", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.Percentage <= second.Percentage {
		t.Fatalf("closer expiry should deepen the markdown: %v vs %v",
			third.Percentage, second.Percentage)
	}
}

func TestTriggerExpiredNeverMarkedDown(t *testing.T) {
	p, store := newTestPolicy()
	store.Put(context.Background(), models.PerishableState{
		ProductID: "milk", StoreID: "main", CurrentQuantity: 5, DaysUntilExpiry: -1,
	})

	d, err := p.Trigger(context.Background(), "milk", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Eligible || d.Percentage != 0 {
		t.Fatalf("expired stock must not be marked down, got %+v", d)
	}

	st, _, _ := store.Get(context.Background(), "milk", "main")
	if st.Status != models.PerishableExpired {
		t.Fatalf("stored status = %q, want expired", st.Status)
	}
}

func TestListByStoreRefreshesStatus(t *testing.T) {
	p, store := newTestPolicy()
	store.Put(context.Background(), models.PerishableState{
		ProductID: "milk", StoreID: "main", CurrentQuantity: 5, DaysUntilExpiry: 1,
		Status: models.PerishableFresh, // stale status
	})

	states, err := p.ListByStore(context.Background(), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("states = %d, want 1", len(states))
	}
	if states[0].Status != models.PerishableEligible {
		t.Fatalf("status = %q, want refreshed to markdown_eligible", states[0].Status)
	}
}

func TestTickAdvancesLifecycle(t *testing.T) {
	p, store := newTestPolicy()
	ctx := context.Background()

	store.Put(ctx, models.PerishableState{
		ProductID: "soldout", StoreID: "main", CurrentQuantity: 0, DaysUntilExpiry: 5,
	})
	store.Put(ctx, models.PerishableState{
		ProductID: "yogurt", StoreID: "main", CurrentQuantity: 3, DaysUntilExpiry: 4,
		Status: models.PerishableFresh,
	})
	store.Put(ctx, models.PerishableState{
		ProductID: "bread", StoreID: "main", CurrentQuantity: 2, DaysUntilExpiry: 0,
		Status: models.PerishableEligible,
	})

	if err := p.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "soldout", "main"); ok {
		t.Fatal("sold-out stock should be removed on tick")
	}

	yogurt, ok, _ := store.Get(ctx, "yogurt", "main")
	if !ok || yogurt.DaysUntilExpiry != 3 || yogurt.Status != models.PerishableEligible {
		t.Fatalf("yogurt after tick = %+v, want 3 days and eligible", yogurt)
	}

	bread, ok, _ := store.Get(ctx, "bread", "main")
	if !ok || bread.DaysUntilExpiry != -1 || bread.Status != models.PerishableExpired {
		t.Fatalf("bread after tick = %+v, want -1 days and expired", bread)
	}
}
