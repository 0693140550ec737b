package render

import (
	"fmt"
	"math"
	"time"
)

// Window describes the span from start to end relative to now, e.g.
// "Jan 20 12:00–12:14 (≈14m ago; 3h ago to 2h ago)".
func Window(start, end, now time.Time) string {
	start, end = start.Local(), end.Local()

	startLabel := Human(start, now)
	var endLabel string
	if sameDay(start, end) {
		endLabel = end.Format("15:04")
	} else {
		endLabel = Human(end, now)
	}

	return fmt.Sprintf("%s–%s (≈%s; %s to %s)",
		startLabel, endLabel,
		Fuzzy(end.Sub(start)),
		Fuzzy(now.Sub(start)), Fuzzy(now.Sub(end)),
	)
}

// Human formats t as "Jan 02 15:04", adding the year when it differs from now.
func Human(t, now time.Time) string {
	t = t.Local()
	if t.Year() != now.Local().Year() {
		return t.Format("Jan 02 2006 15:04")
	}
	return t.Format("Jan 02 15:04")
}

// Fuzzy renders how long ago (positive d) or ahead (negative d) something is.
func Fuzzy(d time.Duration) string {
	direction := "ago"
	if d < 0 {
		d = -d
		direction = "from now"
	}
	if d < time.Minute {
		return "just now"
	}
	return roundedUnits(d) + " " + direction
}

// roundedUnits rounds a non-negative d of at least a minute to the largest
// fitting unit: m, h, d, mo (30 days) or y (360 days).
func roundedUnits(d time.Duration) string {
	minutes := d.Seconds() / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", roundHalfEven(minutes))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", roundHalfEven(hours))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd", roundHalfEven(days))
	}
	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%dmo", roundHalfEven(months))
	}
	return fmt.Sprintf("%dy", roundHalfEven(months/12))
}

func roundHalfEven(v float64) int64 {
	return int64(math.RoundToEven(v))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
