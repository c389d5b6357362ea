package usecase

import (
	"context"
	"fmt"

	applogger "RetailPulse/pkg/logger"
	"RetailPulse/pkg/queue"
)

const (
	TypeThresholdRecalc = "threshold.recalc"
	TypePerishableTick  = "perishable.tick"
)

// ThresholdRecalcPayload identifies one product/store pair to rederive.
type ThresholdRecalcPayload struct {
	ProductID    string `json:"product_id"`
	StoreID      string `json:"store_id"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// ThresholdRecalcJob consumes scheduled recalculation messages.
type ThresholdRecalcJob struct {
	calc *ThresholdCalculator
	l    *applogger.Logger
}

func NewThresholdRecalcJob(calc *ThresholdCalculator, l *applogger.Logger) *ThresholdRecalcJob {
	return &ThresholdRecalcJob{calc: calc, l: l}
}

func (j *ThresholdRecalcJob) Name() string { return "threshold_recalc_job" }
func (j *ThresholdRecalcJob) Type() string { return TypeThresholdRecalc }

func (j *ThresholdRecalcJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ThresholdRecalcPayload](payload)
	if err != nil {
		return fmt.Errorf("invalid recalc payload: %w", err)
	}
	if _, err := j.calc.Recalculate(ctx, p.ProductID, p.StoreID, p.LeadTimeDays, "scheduled recalculation"); err != nil {
		return fmt.Errorf("recalculate %s/%s: %w", p.ProductID, p.StoreID, err)
	}
	return nil
}

// PerishableTickJob consumes the daily perishable lifecycle message.
type PerishableTickJob struct {
	policy *MarkdownPolicy
	l      *applogger.Logger
}

func NewPerishableTickJob(policy *MarkdownPolicy, l *applogger.Logger) *PerishableTickJob {
	return &PerishableTickJob{policy: policy, l: l}
}

func (j *PerishableTickJob) Name() string { return "perishable_tick_job" }
func (j *PerishableTickJob) Type() string { return TypePerishableTick }

func (j *PerishableTickJob) Handle(ctx context.Context, _ interface{}) error {
	return j.policy.Tick(ctx)
}

var (
	_ queue.Job = (*ThresholdRecalcJob)(nil)
	_ queue.Job = (*PerishableTickJob)(nil)
)
