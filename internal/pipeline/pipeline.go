// Package pipeline runs the sequential upload pass: each worklog is
// uploaded once and its outcome recorded before the next one starts.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Tiliavir/tempoit/internal/model"
)

// Uploader files a single worklog remotely.
type Uploader interface {
	Upload(ctx context.Context, wl model.Worklog) error
}

// Recorder durably marks the source interval of a worklog. Both methods
// must be idempotent and must only annotate, never drop, the interval.
type Recorder interface {
	RecordSuccess(ctx context.Context, wl model.Worklog) error
	RecordFail(ctx context.Context, wl model.Worklog, cause error) error
}

// Outcome is the result of one upload attempt. A nil Err means success.
type Outcome struct {
	Err error
}

// Success reports whether the upload went through.
func (o Outcome) Success() bool {
	return o.Err == nil
}

func (o Outcome) String() string {
	if o.Err == nil {
		return "SUCCESS"
	}
	return "FAIL"
}

// Result pairs a worklog with the outcome of its upload.
type Result struct {
	Worklog model.Worklog
	Outcome Outcome
}

// Report summarises a run.
type Report struct {
	Results []Result
}

// Failed returns the results whose upload failed, in order.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Outcome.Success() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Succeeded counts the successful uploads.
func (r Report) Succeeded() int {
	return len(r.Results) - len(r.Failed())
}

// RecorderError means an outcome could not be recorded. The batch stops
// there: continuing without a durable marker risks a duplicate upload.
type RecorderError struct {
	Op      string
	Worklog model.Worklog
	Outcome Outcome
	Err     error
}

func (e *RecorderError) Error() string {
	return fmt.Sprintf("%s for %s (%s): %v", e.Op, e.Worklog.ID, e.Worklog.Issue, e.Err)
}

func (e *RecorderError) Unwrap() error {
	return e.Err
}

// Hooks let callers observe progress. Both are optional.
type Hooks struct {
	BeforeUpload func(wl model.Worklog)
	AfterUpload  func(res Result)
}

// Run uploads worklogs in order. Upload failures are recorded and the run
// continues with the next worklog; a recorder failure stops the run and
// is returned as a *RecorderError together with the results so far.
func Run(ctx context.Context, worklogs []model.Worklog, up Uploader, rec Recorder, hooks Hooks) (Report, error) {
	var report Report
	for _, wl := range worklogs {
		if hooks.BeforeUpload != nil {
			hooks.BeforeUpload(wl)
		}

		res := Result{Worklog: wl, Outcome: Outcome{Err: up.Upload(ctx, wl)}}
		report.Results = append(report.Results, res)

		if hooks.AfterUpload != nil {
			hooks.AfterUpload(res)
		}

		if err := record(ctx, rec, res); err != nil {
			return report, err
		}
	}
	return report, nil
}

func record(ctx context.Context, rec Recorder, res Result) error {
	if res.Outcome.Success() {
		if err := rec.RecordSuccess(ctx, res.Worklog); err != nil {
			return &RecorderError{Op: "record success", Worklog: res.Worklog, Outcome: res.Outcome, Err: err}
		}
		return nil
	}
	if err := rec.RecordFail(ctx, res.Worklog, res.Outcome.Err); err != nil {
		return &RecorderError{Op: "record failure", Worklog: res.Worklog, Outcome: res.Outcome, Err: err}
	}
	return nil
}
