package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/tempoit/internal/timecalc"
)

// Interval is a single tracked interval as read from `timew export`.
// All instants are UTC. End is nil while the interval is still running.
type Interval struct {
	ID         string
	Start      time.Time
	End        *time.Time
	Tags       []string
	Annotation *string
}

// exportInterval mirrors the JSON shape emitted by timewarrior.
type exportInterval struct {
	ID         int      `json:"id"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Tags       []string `json:"tags"`
	Annotation *string  `json:"annotation"`
}

// UnmarshalJSON decodes the timewarrior export form. The numeric id is
// rendered as "@N", which is how timew addresses intervals on the CLI.
func (iv *Interval) UnmarshalJSON(b []byte) error {
	var raw exportInterval
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	start, err := timecalc.ParseExport(raw.Start)
	if err != nil {
		return fmt.Errorf("interval %d: %w", raw.ID, err)
	}
	var end *time.Time
	if raw.End != "" {
		e, err := timecalc.ParseExport(raw.End)
		if err != nil {
			return fmt.Errorf("interval %d: %w", raw.ID, err)
		}
		end = &e
	}
	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}
	*iv = Interval{
		ID:         fmt.Sprintf("@%d", raw.ID),
		Start:      start,
		End:        end,
		Tags:       tags,
		Annotation: raw.Annotation,
	}
	return nil
}

// Open reports whether the interval has no end yet.
func (iv Interval) Open() bool {
	return iv.End == nil
}

// String renders the interval for user-facing reports.
func (iv Interval) String() string {
	day := iv.Start
	duration := "open"
	if iv.End != nil {
		day = *iv.End
		duration = timecalc.FormatTruncated(iv.End.Sub(iv.Start))
	}
	annotation := "-"
	if iv.Annotation != nil {
		annotation = *iv.Annotation
	}
	return fmt.Sprintf("%-5s %s %-7s [%s] '%s'",
		iv.ID,
		day.UTC().Format(DateLayout),
		duration,
		center(strings.Join(iv.Tags, ", "), 15),
		annotation,
	)
}

// center pads s with spaces on both sides to width; extra space goes right.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
