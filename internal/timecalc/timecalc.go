package timecalc

import (
	"fmt"
	"math"
	"time"
)

// ExportLayout is the timestamp layout used by `timew export` (always UTC).
const ExportLayout = "20060102T150405Z"

// FormatJira formats d in the "Xh Ym" form accepted by Tempo.
// Hours are truncated, minutes are rounded half-up on the whole-second
// total. A result of "0h 0m" is raised to "0h 1m" because Tempo rejects
// empty worklogs. Negative durations are treated as zero.
func FormatJira(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	seconds := int64(d / time.Second)
	minutes := int64(math.Floor(float64(seconds)/60.0+0.5)) - hours*60
	if hours == 0 && minutes == 0 {
		minutes = 1
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatTruncated formats d as "Xh Ym" with both components truncated.
// It is used for raw interval display, where no rounding is wanted.
func FormatTruncated(d time.Duration) string {
	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) - hours*60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// ParseExport parses a timewarrior export timestamp as a UTC instant.
func ParseExport(s string) (time.Time, error) {
	t, err := time.Parse(ExportLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing export time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Sum adds up a list of durations.
func Sum(ds ...time.Duration) time.Duration {
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total
}
