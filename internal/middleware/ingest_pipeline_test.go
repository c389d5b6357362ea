package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
)

type countingProc struct {
	mu     sync.Mutex
	events []*models.SalesEvent
	err    error
}

func (p *countingProc) Process(_ context.Context, e *models.SalesEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type noopMetrics struct{}

func (noopMetrics) RecordEventIngested(string, string) {}
func (noopMetrics) RecordError(string)                 {}
func (noopMetrics) RecordDailyDemand(string, float64)  {}
func (noopMetrics) RecordLatency(string, float64)      {}

func validEvent() *models.SalesEvent {
	return &models.SalesEvent{
		ProductID: "p1",
		StoreID:   "main",
		Timestamp: time.Now().Unix(),
		Quantity:  2,
		UnitPrice: 3.5,
	}
}

func TestPipelineForwardsValidEvent(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{})

	if err := p.Process(context.Background(), validEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("downstream received %d events, want 1", proc.count())
	}
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{})
	ctx := context.Background()

	bad := []*models.SalesEvent{
		nil,
		{StoreID: "main", Timestamp: 1, Quantity: 1},            // no product
		{ProductID: "p1", Timestamp: 1, Quantity: 1},            // no store
		{ProductID: "p1", StoreID: "main", Quantity: 1},         // no timestamp
		{ProductID: "p1", StoreID: "main", Timestamp: 1},        // zero quantity
		{ProductID: "p1", StoreID: "main", Timestamp: 1, Quantity: 1, UnitPrice: -1},
	}
	for i, e := range bad {
		if err := p.Process(ctx, e); err == nil {
			t.Fatalf("case %d: invalid event accepted", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("downstream received %d events, want 0", proc.count())
	}
}

func TestPipelineThrottlesPerProduct(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	// Two back-to-back events for the same product: second is throttled
	// but throttling is not an error.
	if err := p.Process(ctx, validEvent()); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if err := p.Process(ctx, validEvent()); err != nil {
		t.Fatalf("throttled event should not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("downstream received %d events, want 1", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countingProc{err: errors.New("backend down")}
	p := NewIngestPipeline(proc, noopMetrics{}, WithBufferSize(10))

	err := p.Process(context.Background(), validEvent())
	if err == nil {
		t.Fatal("downstream failure should surface an error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("buffer depth = %d, want 1", len(p.bufCh))
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{}, WithTransform(func(e *models.SalesEvent) *models.SalesEvent {
		e.Quantity *= 2
		return e
	}))

	if err := p.Process(context.Background(), validEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.events[0].Quantity != 4 {
		t.Fatalf("quantity = %v, want transformed 4", proc.events[0].Quantity)
	}
}
