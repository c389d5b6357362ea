package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	fmetrics "RetailPulse/internal/service/metrics"
	applogger "RetailPulse/pkg/logger"
)

// MarkdownCurve maps days until expiry to a discount fraction.
type MarkdownCurve struct {
	Start float64 // discount at zero days left
	Step  float64 // discount reduction per remaining day
	Floor float64
	Cap   float64
}

// DefaultMarkdownCurve: 70% off on the last day, 10% less per remaining
// day, bounded to [10%, 70%].
var DefaultMarkdownCurve = MarkdownCurve{Start: 0.7, Step: 0.1, Floor: 0.1, Cap: 0.7}

func (c MarkdownCurve) PercentageFor(daysUntilExpiry int) float64 {
	p := c.Start - c.Step*float64(daysUntilExpiry)
	if p < c.Floor {
		return c.Floor
	}
	if p > c.Cap {
		return c.Cap
	}
	return p
}

// markdownEligibleDays is the expiry window that makes a perishable
// markdown eligible.
const markdownEligibleDays = 3

// MarkdownPolicy manages the perishable lifecycle and markdown decisions.
// Triggering the same (product, store, days-left) twice returns the
// original decision unchanged.
type MarkdownPolicy struct {
	store   domrepo.PerishableStore
	curve   MarkdownCurve
	metrics *fmetrics.ForecastMetrics
	l       *applogger.Logger
	now     func() time.Time

	mu        sync.Mutex
	decisions map[string]models.MarkdownDecision
}

func NewMarkdownPolicy(store domrepo.PerishableStore, curve MarkdownCurve, m *fmetrics.ForecastMetrics, l *applogger.Logger) *MarkdownPolicy {
	if curve == (MarkdownCurve{}) {
		curve = DefaultMarkdownCurve
	}
	return &MarkdownPolicy{
		store:     store,
		curve:     curve,
		metrics:   m,
		l:         l,
		now:       time.Now,
		decisions: make(map[string]models.MarkdownDecision),
	}
}

// StatusFor classifies a perishable by days until expiry.
func StatusFor(daysUntilExpiry int) models.PerishableStatus {
	switch {
	case daysUntilExpiry < 0:
		return models.PerishableExpired
	case daysUntilExpiry <= markdownEligibleDays:
		return models.PerishableEligible
	default:
		return models.PerishableFresh
	}
}

// Trigger evaluates markdown eligibility for one perishable and persists
// the resulting lifecycle status. Expired stock is never marked down.
func (p *MarkdownPolicy) Trigger(ctx context.Context, productID, storeID string) (models.MarkdownDecision, error) {
	st, ok, err := p.store.Get(ctx, productID, storeID)
	if err != nil {
		return models.MarkdownDecision{}, err
	}
	if !ok {
		return models.MarkdownDecision{}, domrepo.ErrUnknownPerishable
	}

	status := StatusFor(st.DaysUntilExpiry)
	if st.Status != status {
		st.Status = status
		if err := p.store.Put(ctx, st); err != nil {
			return models.MarkdownDecision{}, err
		}
	}

	key := fmt.Sprintf("%s|%s|%d", productID, storeID, st.DaysUntilExpiry)
	p.mu.Lock()
	if d, seen := p.decisions[key]; seen {
		p.mu.Unlock()
		return d, nil
	}

	d := models.MarkdownDecision{
		ProductID:       productID,
		StoreID:         storeID,
		DaysUntilExpiry: st.DaysUntilExpiry,
		DecidedAt:       p.now().UTC(),
	}
	if status == models.PerishableEligible {
		d.Eligible = true
		d.Percentage = p.curve.PercentageFor(st.DaysUntilExpiry)
	}
	p.decisions[key] = d
	p.mu.Unlock()

	if p.metrics != nil {
		outcome := "skipped"
		if d.Eligible {
			outcome = "eligible"
		} else if status == models.PerishableExpired {
			outcome = "expired"
		}
		p.metrics.RecordMarkdown(outcome)
	}
	if p.l != nil && d.Eligible {
		p.l.Info("markdown triggered",
			applogger.String("product", productID),
			applogger.String("store", storeID),
			applogger.Int("days_until_expiry", st.DaysUntilExpiry),
			applogger.Float64("percentage", d.Percentage))
	}
	return d, nil
}

// ListByStore returns perishable states with their lifecycle status
// refreshed from days until expiry.
func (p *MarkdownPolicy) ListByStore(ctx context.Context, storeID string) ([]models.PerishableState, error) {
	states, err := p.store.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	for i := range states {
		states[i].Status = StatusFor(states[i].DaysUntilExpiry)
	}
	return states, nil
}

// Tick advances every tracked perishable by one day: expiry counters
// drop, statuses shift, and sold-out stock is removed.
func (p *MarkdownPolicy) Tick(ctx context.Context) error {
	states, err := p.store.All(ctx)
	if err != nil {
		return err
	}

	expired, removed := 0, 0
	for _, st := range states {
		if st.CurrentQuantity <= 0 {
			if err := p.store.Delete(ctx, st.ProductID, st.StoreID); err != nil {
				return err
			}
			removed++
			continue
		}

		st.DaysUntilExpiry--
		st.Status = StatusFor(st.DaysUntilExpiry)
		if st.Status == models.PerishableExpired {
			expired++
		}
		if err := p.store.Put(ctx, st); err != nil {
			return err
		}
	}

	if p.l != nil {
		p.l.Info("perishable daily tick",
			applogger.Int("tracked", len(states)),
			applogger.Int("expired", expired),
			applogger.Int("removed", removed))
	}
	return nil
}
