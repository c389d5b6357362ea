package usecase

import (
	"context"
	"sync"
	"time"

	domrepo "RetailPulse/internal/domain/repository"
	applogger "RetailPulse/pkg/logger"
	"RetailPulse/pkg/queue"
)

// SchedulerConfig sets the replenishment cadences.
type SchedulerConfig struct {
	RecalcInterval time.Duration // threshold recalculation cadence
	TickInterval   time.Duration // perishable lifecycle cadence
	StoreIDs       []string
	LeadTimeDays   int
}

// ReplenishmentScheduler periodically enqueues threshold recalculations
// for every known product and the daily perishable tick. The work itself
// runs on queue workers, so a slow product never blocks the cadence.
type ReplenishmentScheduler struct {
	cfg     SchedulerConfig
	queue   queue.QueueService
	history domrepo.HistoryProvider
	l       *applogger.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

func NewReplenishmentScheduler(cfg SchedulerConfig, q queue.QueueService, history domrepo.HistoryProvider, l *applogger.Logger) *ReplenishmentScheduler {
	if cfg.RecalcInterval <= 0 {
		cfg.RecalcInterval = 24 * time.Hour
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 24 * time.Hour
	}
	if cfg.LeadTimeDays <= 0 {
		cfg.LeadTimeDays = 7
	}
	if len(cfg.StoreIDs) == 0 {
		cfg.StoreIDs = []string{"main"}
	}
	return &ReplenishmentScheduler{
		cfg:     cfg,
		queue:   q,
		history: history,
		l:       l,
		stop:    make(chan struct{}),
	}
}

func (s *ReplenishmentScheduler) Start() {
	s.done.Add(2)
	go s.loop(s.cfg.RecalcInterval, s.enqueueRecalcs)
	go s.loop(s.cfg.TickInterval, s.enqueueTick)
	s.l.Info("replenishment scheduler started",
		applogger.Duration("recalc_interval", s.cfg.RecalcInterval),
		applogger.Duration("tick_interval", s.cfg.TickInterval))
}

func (s *ReplenishmentScheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	finished := make(chan struct{})
	go func() {
		s.done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReplenishmentScheduler) loop(interval time.Duration, fn func(context.Context)) {
	defer s.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			fn(ctx)
			cancel()
		case <-s.stop:
			return
		}
	}
}

func (s *ReplenishmentScheduler) enqueueRecalcs(ctx context.Context) {
	products, err := s.history.ListProducts(ctx)
	if err != nil {
		s.l.Error("failed to list products for recalculation", applogger.Error(err))
		return
	}

	enqueued := 0
	for _, productID := range products {
		for _, storeID := range s.cfg.StoreIDs {
			payload := ThresholdRecalcPayload{
				ProductID:    productID,
				StoreID:      storeID,
				LeadTimeDays: s.cfg.LeadTimeDays,
			}
			if err := s.queue.PublishMessage(ctx, TypeThresholdRecalc, payload); err != nil {
				s.l.Error("failed to enqueue threshold recalculation",
					applogger.String("product", productID),
					applogger.String("store", storeID),
					applogger.Error(err))
				continue
			}
			enqueued++
		}
	}
	s.l.Info("threshold recalculations enqueued", applogger.Int("count", enqueued))
}

func (s *ReplenishmentScheduler) enqueueTick(ctx context.Context) {
	if err := s.queue.PublishMessage(ctx, TypePerishableTick, struct{}{}); err != nil {
		s.l.Error("failed to enqueue perishable tick", applogger.Error(err))
		return
	}
	s.l.Info("perishable tick enqueued")
}
