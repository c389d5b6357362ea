package repository

import "testing"

func TestHorizonDays(t *testing.T) {
	cases := map[Horizon]int{
		HorizonWeek:    7,
		HorizonMonth:   30,
		HorizonQuarter: 90,
		HorizonYear:    365,
		Horizon("bogus"): 30,
	}
	for h, want := range cases {
		if got := h.Days(); got != want {
			t.Fatalf("%q: days = %d, want %d", h, got, want)
		}
	}
}

func TestNormalizeHorizon(t *testing.T) {
	if NormalizeHorizon("") != HorizonMonth {
		t.Fatal("empty input should default to month")
	}
	if NormalizeHorizon("week") != HorizonWeek {
		t.Fatal("week should normalize to week")
	}
	if NormalizeHorizon("fortnight") != HorizonMonth {
		t.Fatal("unsupported input should default to month")
	}
}
