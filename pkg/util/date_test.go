package util

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Fatal("empty string should not parse")
	}
	got, ok := ParseTime("2026-08-31T10:00:00Z")
	if !ok || got.Hour() != 10 {
		t.Fatalf("rfc3339 parse failed: %v ok=%v", got, ok)
	}
	got, ok = ParseTime("1756600000")
	if !ok || got.Unix() != 1756600000 {
		t.Fatalf("unix seconds parse failed: %v ok=%v", got, ok)
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 8, 31, 17, 42, 3, 0, time.UTC)
	got := StartOfDay(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Day() != 31 {
		t.Fatalf("start of day = %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 8, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 4, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 3 {
		t.Fatalf("days between = %d, want 3", got)
	}
	if got := DaysBetween(b, a); got != -3 {
		t.Fatalf("reverse days between = %d, want -3", got)
	}
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	got := DaysAgo(now, 7)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("days ago = %v, want %v", got, want)
	}
}
