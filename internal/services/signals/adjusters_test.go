package signals

import (
	"context"
	"math"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
)

func feedWith(t *testing.T, maxAge time.Duration) *SignalFeed {
	t.Helper()
	return NewSignalFeed(maxAge)
}

func TestSocialAdjusterFormula(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordSocial(models.SocialReading{
		ProductID: "p1",
		Sentiment: 0.5,
		Trending:  0.8,
		Mentions:  500,
	})

	a := NewSocialAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (0.5*0.3 + 0.8*0.4 + 0.5*0.3) * 0.2 = 0.124
	want := 0.124
	if math.Abs(adj.Value-want) > 1e-9 {
		t.Fatalf("adjustment = %v, want %v", adj.Value, want)
	}
	if adj.Source != models.SourceSocial {
		t.Fatalf("source = %q, want social", adj.Source)
	}
}

func TestSocialAdjusterClampsInputs(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordSocial(models.SocialReading{
		ProductID: "p1",
		Sentiment: 5,       // clamps to 1
		Trending:  -2,      // clamps to 0
		Mentions:  1000000, // volume caps at 1
	})

	a := NewSocialAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (1*0.3 + 0*0.4 + 1*0.3) * 0.2 = 0.12
	if math.Abs(adj.Value-0.12) > 1e-9 {
		t.Fatalf("adjustment = %v, want 0.12", adj.Value)
	}
}

func TestSocialAdjusterMissingReading(t *testing.T) {
	a := NewSocialAdjuster(feedWith(t, 0), nil)
	adj, err := a.Adjust(context.Background(), "nobody", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value != 0 {
		t.Fatalf("adjustment = %v, want 0 for missing reading", adj.Value)
	}
}

func TestSocialAdjusterStaleReading(t *testing.T) {
	feed := feedWith(t, time.Minute)
	feed.RecordSocial(models.SocialReading{
		ProductID:  "p1",
		Sentiment:  1,
		Trending:   1,
		Mentions:   1000,
		ObservedAt: time.Now().Add(-2 * time.Minute),
	})

	a := NewSocialAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value != 0 {
		t.Fatalf("adjustment = %v, want 0 for stale reading", adj.Value)
	}
}

func TestWeatherAdjusterFormula(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordWeather(models.WeatherReading{
		StoreID:       "main",
		Temperature:   80,
		Humidity:      60,
		Precipitation: 0.5,
	})

	a := NewWeatherAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ((80-50)/100 + (60-50)/100 - 0.5/10) / 3 * 0.15 = 0.0175
	want := 0.0175
	if math.Abs(adj.Value-want) > 1e-9 {
		t.Fatalf("adjustment = %v, want %v", adj.Value, want)
	}
	if adj.Source != models.SourceWeather {
		t.Fatalf("source = %q, want weather", adj.Source)
	}
}

func TestWeatherAdjusterNeutralConditions(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordWeather(models.WeatherReading{
		StoreID:     "main",
		Temperature: 50,
		Humidity:    50,
	})

	a := NewWeatherAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value != 0 {
		t.Fatalf("adjustment = %v, want 0 at comfort pivot", adj.Value)
	}
}

func TestWeatherAdjusterHeavyRainNegative(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordWeather(models.WeatherReading{
		StoreID:       "main",
		Temperature:   50,
		Humidity:      50,
		Precipitation: 8,
	})

	a := NewWeatherAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value >= 0 {
		t.Fatalf("adjustment = %v, want negative under heavy rain", adj.Value)
	}
}

func TestEventAdjusterFormula(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordEvents(models.EventReading{
		ProductID: "p1",
		Count:     3,
		Impact:    0.2,
	})

	a := NewEventAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 * 0.2 * 0.1 = 0.06
	if math.Abs(adj.Value-0.06) > 1e-9 {
		t.Fatalf("adjustment = %v, want 0.06", adj.Value)
	}
	if adj.Source != models.SourceEvent {
		t.Fatalf("source = %q, want event", adj.Source)
	}
}

func TestEventAdjusterImpactClamp(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordEvents(models.EventReading{
		ProductID: "p1",
		Count:     2,
		Impact:    0.9, // clamps to 0.3
	})

	a := NewEventAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(adj.Value-0.06) > 1e-9 {
		t.Fatalf("adjustment = %v, want 0.06 after impact clamp", adj.Value)
	}
}

func TestEventAdjusterZeroCount(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordEvents(models.EventReading{ProductID: "p1", Count: 0, Impact: 0.3})

	a := NewEventAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value != 0 {
		t.Fatalf("adjustment = %v, want 0 for zero events", adj.Value)
	}
}

func TestAdjustmentAlwaysBounded(t *testing.T) {
	feed := feedWith(t, 0)
	feed.RecordEvents(models.EventReading{ProductID: "p1", Count: 1000, Impact: 0.3})

	a := NewEventAdjuster(feed, nil)
	adj, err := a.Adjust(context.Background(), "p1", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Value < -1 || adj.Value > 1 {
		t.Fatalf("adjustment = %v, want within [-1, 1]", adj.Value)
	}
	if adj.Value != 1 {
		t.Fatalf("adjustment = %v, want clamped to 1", adj.Value)
	}
}
