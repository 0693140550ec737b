package batch

import (
	"strings"
	"time"
)

// Layouts without a zone are read in the caller's location; layouts with an
// offset carry their own zone and are converted afterwards.
var (
	naiveLayouts = []string{
		"2006-01-02",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15",
		"2006-01-02 15",
	}
	zonedLayouts = []string{
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02 15:04Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05.999999999-0700",
		"2006-01-02 15:04:05-0700",
		"2006-01-02T15:04-0700",
	}
)

const dateTimeHint = "Datetime must be ISO 8601 (e.g. 2025-01-20, 2025-01-20T12:34:56, " +
	"2025-01-20T12:34:56Z, 2025-01-20T12:34:56-05:00)"

// ParseDateTime reads a date-only, local, UTC ("Z") or offset-qualified
// ISO 8601 value. Naive values are interpreted in loc (time.Local when nil);
// qualified values are converted to loc. The returned instant is exact.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "Z") || strings.HasSuffix(v, "z") {
		v = v[:len(v)-1] + "+00:00"
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, invalidInput("%s", dateTimeHint)
}
