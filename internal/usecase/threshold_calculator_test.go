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
	"RetailPulse/internal/services/forecast"
)

func newTestCalculator(history domrepo.HistoryProvider) (*ThresholdCalculator, domrepo.ThresholdStore) {
	store := repo.NewMemoryThresholdStore(nil, 0)
	c := NewThresholdCalculator(history, store, nil, nil)
	c.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	return c, store
}

func TestRecalculateConstantDemand(t *testing.T) {
	history := constantHistory("p1", 10, 90)
	c, _ := newTestCalculator(history)

	states, err := c.Recalculate(context.Background(), "p1", "main", 7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("states = %d, want 3", len(states))
	}

	byType := map[models.ThresholdType]models.ThresholdState{}
	for _, st := range states {
		byType[st.Type] = st
	}

	// Constant demand: CoV = 0, clamped up to the 0.1 floor.
	season := forecast.SeasonalityFactor(15)
	wantReorder := int(math.Round(10 * 7 * season * 1.1))
	if got := byType[models.ThresholdReorderPoint].CurrentValue; got != wantReorder {
		t.Fatalf("reorder point = %d, want %d", got, wantReorder)
	}

	// Max daily equals average, so safety stock is zero.
	if got := byType[models.ThresholdSafetyStock].CurrentValue; got != 0 {
		t.Fatalf("safety stock = %d, want 0", got)
	}

	wantMax := wantReorder + 70
	if got := byType[models.ThresholdMaxStock].CurrentValue; got != wantMax {
		t.Fatalf("max stock = %d, want %d", got, wantMax)
	}

	// 90 days of history: 0.5 + 90/360 = 0.75
	for _, st := range states {
		if math.Abs(st.ConfidenceScore-0.75) > 1e-9 {
			t.Fatalf("confidence = %v, want 0.75", st.ConfidenceScore)
		}
		if st.Reason != "scheduled recalculation" {
			t.Fatalf("reason = %q, want scheduled recalculation", st.Reason)
		}
		if st.CurrentValue != st.CalculatedValue {
			t.Fatalf("fresh recalculation must set current = calculated, got %d vs %d",
				st.CurrentValue, st.CalculatedValue)
		}
	}
}

func TestRecalculateDeterministic(t *testing.T) {
	history := constantHistory("p1", 10, 90)
	c, _ := newTestCalculator(history)

	first, err := c.Recalculate(context.Background(), "p1", "main", 7, "audit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Recalculate(context.Background(), "p1", "main", 7, "audit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recalculation not deterministic:\n%+v\n%+v", first[i], second[i])
		}
	}
}

func TestRecalculateVariabilityClamp(t *testing.T) {
	// Highly erratic demand: CoV well above 0.3.
	store := repo.NewMemoryHistoryStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.TimeSeriesPoint, 30)
	for i := range pts {
		d := 1.0
		if i%5 == 0 {
			d = 200
		}
		pts[i] = models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Demand: d}
	}
	store.Load("spiky", pts)

	c, _ := newTestCalculator(store)
	states, err := c.Recalculate(context.Background(), "spiky", "main", 7, "audit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := states[0].Factors.DemandVariability
	if v < 0.1 || v > 0.3 {
		t.Fatalf("variability = %v, want within [0.1, 0.3]", v)
	}
	if v != 0.3 {
		t.Fatalf("variability = %v, want clamped to 0.3", v)
	}
}

func TestRecalculateConfidenceCap(t *testing.T) {
	history := constantHistory("p1", 10, 90)
	c, _ := newTestCalculator(history)

	states, err := c.Recalculate(context.Background(), "p1", "main", 7, "audit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, st := range states {
		if st.ConfidenceScore > 0.95 {
			t.Fatalf("confidence = %v, want <= 0.95", st.ConfidenceScore)
		}
	}
}

func TestRecalculateUnknownProduct(t *testing.T) {
	c, _ := newTestCalculator(repo.NewMemoryHistoryStore())
	_, err := c.Recalculate(context.Background(), "ghost", "main", 7, "audit")
	if !errors.Is(err, domrepo.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestOverridePreservesCalculatedValue(t *testing.T) {
	history := constantHistory("p1", 10, 90)
	c, store := newTestCalculator(history)

	states, err := c.Recalculate(context.Background(), "p1", "main", 7, "audit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var calculated int
	for _, st := range states {
		if st.Type == models.ThresholdReorderPoint {
			calculated = st.CalculatedValue
		}
	}

	st, err := c.Override(context.Background(), "p1", "main", models.ThresholdReorderPoint, 999, "flash sale prep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentValue != 999 {
		t.Fatalf("current = %d, want 999", st.CurrentValue)
	}
	if st.CalculatedValue != calculated {
		t.Fatalf("calculated = %d, want preserved %d", st.CalculatedValue, calculated)
	}
	if st.Reason != "manual override: flash sale prep" {
		t.Fatalf("reason = %q, want manual override prefix", st.Reason)
	}

	// The override must be what the store now returns.
	got, ok, err := store.Get(context.Background(), "p1", "main", models.ThresholdReorderPoint)
	if err != nil || !ok {
		t.Fatalf("get after override: ok=%v err=%v", ok, err)
	}
	if got.CurrentValue != 999 {
		t.Fatalf("stored current = %d, want 999", got.CurrentValue)
	}
}

func TestOverrideWithoutPriorState(t *testing.T) {
	c, _ := newTestCalculator(repo.NewMemoryHistoryStore())
	st, err := c.Override(context.Background(), "new", "main", models.ThresholdSafetyStock, 25, "initial stocking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentValue != 25 || st.CalculatedValue != 25 {
		t.Fatalf("state = %+v, want current and calculated 25", st)
	}
}
