package model

import (
	"fmt"
	"time"

	"github.com/Tiliavir/tempoit/internal/timecalc"
)

// DateLayout is the ANSI date form Tempo expects.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t as seen in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Worklog is an upload-ready record of time spent on one issue.
type Worklog struct {
	// Duration is the elapsed time; it is encoded with timecalc.FormatJira on upload.
	Duration time.Duration
	// Date is the day the work finished, already resolved to local time.
	Date Date
	// Issue is the upper-cased ticket key, e.g. "SE-1234".
	Issue string
	// Description is the worklog comment.
	Description string
	// ID correlates the worklog with its source interval (e.g. "@3") for outcome recording.
	ID string
}

// TimeSpent returns the duration in Tempo's "Xh Ym" form.
func (w Worklog) TimeSpent() string {
	return timecalc.FormatJira(w.Duration)
}

func (w Worklog) String() string {
	return fmt.Sprintf("%-5s %s %-7s [%s] '%s'", w.ID, w.Date, w.TimeSpent(), w.Issue, w.Description)
}
