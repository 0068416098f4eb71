package pipeline

import (
	"context"

	"github.com/Tiliavir/tempoit/internal/model"
)

// Tee fans an outcome out to several recorders in order, stopping at the
// first error. Put the authoritative marker first.
func Tee(recorders ...Recorder) Recorder {
	return tee(recorders)
}

type tee []Recorder

func (t tee) RecordSuccess(ctx context.Context, wl model.Worklog) error {
	for _, r := range t {
		if err := r.RecordSuccess(ctx, wl); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) RecordFail(ctx context.Context, wl model.Worklog, cause error) error {
	for _, r := range t {
		if err := r.RecordFail(ctx, wl, cause); err != nil {
			return err
		}
	}
	return nil
}
