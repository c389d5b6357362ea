package repository

// Horizon represents a forecast horizon bucket.
type Horizon string

const (
	HorizonWeek    Horizon = "week"
	HorizonMonth   Horizon = "month"
	HorizonQuarter Horizon = "quarter"
	HorizonYear    Horizon = "year"
)

// Days returns the horizon length in days.
func (h Horizon) Days() int {
	switch h {
	case HorizonWeek:
		return 7
	case HorizonMonth:
		return 30
	case HorizonQuarter:
		return 90
	case HorizonYear:
		return 365
	default:
		return 30
	}
}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h Horizon) bool {
	switch h {
	case HorizonWeek, HorizonMonth, HorizonQuarter, HorizonYear:
		return true
	default:
		return false
	}
}

// DefaultHorizon returns the default horizon.
func DefaultHorizon() Horizon { return HorizonMonth }

// NormalizeHorizon converts a raw string to a valid horizon (or default).
func NormalizeHorizon(s string) Horizon {
	if s == "" {
		return DefaultHorizon()
	}
	h := Horizon(s)
	if IsValidHorizon(h) {
		return h
	}
	return DefaultHorizon()
}
