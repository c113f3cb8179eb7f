package timerange

import "time"

const (
	OneMinute   = 60
	FiveMinutes = 300
	OneHour     = 3600
)

// SelectPeriod returns the sampling period in seconds. A positive explicit
// period always wins; otherwise the period grows with the span so charts stay
// legible.
func SelectPeriod(r Range, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	span := r.Duration()
	switch {
	case span <= time.Hour:
		return OneMinute
	case span <= 6*time.Hour:
		return FiveMinutes
	default:
		return OneHour
	}
}
