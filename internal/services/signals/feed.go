package signals

import (
	"context"
	"sync"
	"time"

	"RetailPulse/internal/domain/models"
	domsvc "RetailPulse/internal/domain/service"
)

// SignalFeed holds the latest signal reading per key, with staleness
// expiry. Production wiring feeds it from the signal ingestion endpoints;
// tests seed it directly. A missing or stale reading is a valid response
// mapped to a zero adjustment downstream.
type SignalFeed struct {
	mu      sync.RWMutex
	maxAge  time.Duration
	social  map[string]models.SocialReading  // by product
	weather map[string]models.WeatherReading // by store
	events  map[string]models.EventReading   // by product
}

func NewSignalFeed(maxAge time.Duration) *SignalFeed {
	return &SignalFeed{
		maxAge:  maxAge,
		social:  make(map[string]models.SocialReading),
		weather: make(map[string]models.WeatherReading),
		events:  make(map[string]models.EventReading),
	}
}

func (f *SignalFeed) RecordSocial(r models.SocialReading) {
	if r.ObservedAt.IsZero() {
		r.ObservedAt = time.Now()
	}
	f.mu.Lock()
	f.social[r.ProductID] = r
	f.mu.Unlock()
}

func (f *SignalFeed) RecordWeather(r models.WeatherReading) {
	if r.ObservedAt.IsZero() {
		r.ObservedAt = time.Now()
	}
	f.mu.Lock()
	f.weather[r.StoreID] = r
	f.mu.Unlock()
}

func (f *SignalFeed) RecordEvents(r models.EventReading) {
	if r.ObservedAt.IsZero() {
		r.ObservedAt = time.Now()
	}
	f.mu.Lock()
	f.events[r.ProductID] = r
	f.mu.Unlock()
}

func (f *SignalFeed) Social(_ context.Context, productID string) (models.SocialReading, bool, error) {
	f.mu.RLock()
	r, ok := f.social[productID]
	f.mu.RUnlock()
	if !ok || f.stale(r.ObservedAt) {
		return models.SocialReading{}, false, nil
	}
	return r, true, nil
}

func (f *SignalFeed) Weather(_ context.Context, storeID string) (models.WeatherReading, bool, error) {
	f.mu.RLock()
	r, ok := f.weather[storeID]
	f.mu.RUnlock()
	if !ok || f.stale(r.ObservedAt) {
		return models.WeatherReading{}, false, nil
	}
	return r, true, nil
}

func (f *SignalFeed) Events(_ context.Context, productID string) (models.EventReading, bool, error) {
	f.mu.RLock()
	r, ok := f.events[productID]
	f.mu.RUnlock()
	if !ok || f.stale(r.ObservedAt) {
		return models.EventReading{}, false, nil
	}
	return r, true, nil
}

func (f *SignalFeed) stale(observed time.Time) bool {
	if f.maxAge <= 0 {
		return false
	}
	return time.Since(observed) > f.maxAge
}

var (
	_ domsvc.SocialSignalProvider  = (*SignalFeed)(nil)
	_ domsvc.WeatherSignalProvider = (*SignalFeed)(nil)
	_ domsvc.EventSignalProvider   = (*SignalFeed)(nil)
)
