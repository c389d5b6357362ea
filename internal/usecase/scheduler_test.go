package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	applogger "RetailPulse/pkg/logger"
)

type capturingQueue struct {
	mu       sync.Mutex
	messages []struct {
		msgType string
		payload interface{}
	}
}

func (q *capturingQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	q.mu.Lock()
	q.messages = append(q.messages, struct {
		msgType string
		payload interface{}
	}{msgType, payload})
	q.mu.Unlock()
	return nil
}

func (q *capturingQueue) byType(msgType string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, m := range q.messages {
		if m.msgType == msgType {
			n++
		}
	}
	return n
}

func quietLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestSchedulerEnqueuesPerProductPerStore(t *testing.T) {
	history := constantHistory("p1", 10, 20)
	history.Load("p2", []models.TimeSeriesPoint{
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Demand: 5},
	})

	q := &capturingQueue{}
	s := NewReplenishmentScheduler(SchedulerConfig{
		RecalcInterval: 20 * time.Millisecond,
		TickInterval:   time.Hour,
		StoreIDs:       []string{"main", "downtown"},
		LeadTimeDays:   7,
	}, q, history, quietLogger(t))

	s.Start()
	time.Sleep(60 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	got := q.byType(TypeThresholdRecalc)
	// Two products across two stores: each cadence fires four messages.
	if got < 4 || got%4 != 0 {
		t.Fatalf("recalc messages = %d, want a positive multiple of 4", got)
	}
}

func TestSchedulerEnqueuesTick(t *testing.T) {
	q := &capturingQueue{}
	s := NewReplenishmentScheduler(SchedulerConfig{
		RecalcInterval: time.Hour,
		TickInterval:   20 * time.Millisecond,
	}, q, constantHistory("p1", 1, 5), quietLogger(t))

	s.Start()
	time.Sleep(60 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if q.byType(TypePerishableTick) == 0 {
		t.Fatal("expected at least one perishable tick message")
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	q := &capturingQueue{}
	s := NewReplenishmentScheduler(SchedulerConfig{}, q, constantHistory("p1", 1, 5), quietLogger(t))
	s.Start()

	ctx := context.Background()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
