// Package worklog turns raw timewarrior intervals into upload-ready worklogs.
package worklog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Tiliavir/tempoit/internal/model"
)

// Kind classifies why an interval cannot be logged.
type Kind int

const (
	// Open means the interval is still running.
	Open Kind = iota + 1
	// Untagged means no tag matches the issue pattern.
	Untagged
	// NoDescription means the interval has no annotation.
	NoDescription
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Untagged:
		return "untagged"
	case NoDescription:
		return "no ann"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Severity is "INFO" for intervals that will become loggable on their own
// (open ones) and "ERR" for those the user has to fix.
func (k Kind) Severity() string {
	if k == Open {
		return "INFO"
	}
	return "ERR"
}

// ValidationError reports an interval that was excluded from the batch.
type ValidationError struct {
	Kind     Kind
	Interval model.Interval
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Kind.Severity(), e.Kind, e.Interval)
}

// IsKind reports whether err is a ValidationError of kind k.
func IsKind(err error, k Kind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == k
}

// Classifier validates intervals against an issue pattern and resolves
// worklog dates in a fixed location.
type Classifier struct {
	pattern *regexp.Regexp
	loc     *time.Location
}

// NewClassifier builds a Classifier. The pattern is matched
// case-insensitively; a nil loc means time.Local.
func NewClassifier(pattern *regexp.Regexp, loc *time.Location) (*Classifier, error) {
	if pattern == nil {
		return nil, errors.New("issue pattern is required")
	}
	ci := pattern
	if !strings.HasPrefix(pattern.String(), "(?i)") {
		compiled, err := regexp.Compile("(?i)" + pattern.String())
		if err != nil {
			return nil, fmt.Errorf("compiling issue pattern: %w", err)
		}
		ci = compiled
	}
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{pattern: ci, loc: loc}, nil
}

// Classify converts iv into a Worklog, or returns a *ValidationError.
func (c *Classifier) Classify(iv model.Interval) (model.Worklog, error) {
	if iv.End == nil {
		return model.Worklog{}, &ValidationError{Kind: Open, Interval: iv}
	}
	end := *iv.End

	issue, ok := c.issue(iv.Tags)
	if !ok {
		return model.Worklog{}, &ValidationError{Kind: Untagged, Interval: iv}
	}

	// An empty annotation is accepted; only a missing one is rejected.
	if iv.Annotation == nil {
		return model.Worklog{}, &ValidationError{Kind: NoDescription, Interval: iv}
	}

	return model.Worklog{
		Duration:    end.Sub(iv.Start),
		Date:        model.DateOf(end, c.loc),
		Issue:       issue,
		Description: *iv.Annotation,
		ID:          iv.ID,
	}, nil
}

// issue returns the first tag matching the pattern, upper-cased.
func (c *Classifier) issue(tags []string) (string, bool) {
	for _, tag := range tags {
		if c.pattern.MatchString(tag) {
			return strings.ToUpper(tag), true
		}
	}
	return "", false
}

// Partition classifies intervals in order, splitting them into worklogs
// and validation errors. Every interval lands in exactly one of the two.
func (c *Classifier) Partition(ivs []model.Interval) ([]model.Worklog, []*ValidationError) {
	var worklogs []model.Worklog
	var rejected []*ValidationError
	for _, iv := range ivs {
		wl, err := c.Classify(iv)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				rejected = append(rejected, ve)
			}
			continue
		}
		worklogs = append(worklogs, wl)
	}
	return worklogs, rejected
}
