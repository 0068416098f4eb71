package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/tempoit/internal/config"
	"github.com/Tiliavir/tempoit/internal/journal"
	"github.com/Tiliavir/tempoit/internal/model"
	"github.com/Tiliavir/tempoit/internal/pipeline"
	"github.com/Tiliavir/tempoit/internal/timecalc"
	"github.com/Tiliavir/tempoit/internal/timew"
	"github.com/Tiliavir/tempoit/internal/worklog"
)

// session bundles what every command needs: config and the timewarrior client.
type session struct {
	cfg    config.Config
	source *timew.Client
}

func openSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	source := timew.NewClient(
		timew.NewExecRunner(cfg.Timew.Binary),
		cfg.Timew.Filter,
		timew.Tags{
			Logged:  cfg.Timew.LoggedTag,
			Pending: cfg.Timew.PendingTag,
			Failed:  cfg.Timew.FailedTag,
		},
	)
	return &session{cfg: cfg, source: source}, nil
}

// ingest exports intervals and classifies them.
func (s *session) ingest(ctx context.Context) ([]model.Worklog, []*worklog.ValidationError, error) {
	pattern, err := s.cfg.IssuePattern()
	if err != nil {
		return nil, nil, err
	}
	loc, err := s.cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	classifier, err := worklog.NewClassifier(pattern, loc)
	if err != nil {
		return nil, nil, err
	}

	intervals, err := s.source.Intervals(ctx)
	if err != nil {
		return nil, nil, err
	}
	worklogs, rejected := classifier.Partition(intervals)
	return worklogs, rejected, nil
}

// recorder returns the outcome recorder: timewarrior tags first, then the
// journal when enabled. The returned func closes the journal.
func (s *session) recorder() (pipeline.Recorder, func(), error) {
	if s.cfg.Journal.Path == "" {
		return s.source, func() {}, nil
	}
	j, err := openJournal(s.cfg)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.Tee(s.source, j), func() { j.Close() }, nil
}

func openJournal(cfg config.Config) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("journal is disabled (journal.path is empty)")
	}
	return journal.Open(cfg.Journal.Path)
}

func printRejected(w io.Writer, rejected []*worklog.ValidationError) {
	for _, ve := range rejected {
		style := errStyle
		if ve.Kind == worklog.Open {
			style = infoStyle
		}
		fmt.Fprintln(w, style.Render(ve.Error()))
	}
}

func printPending(w io.Writer, worklogs []model.Worklog) {
	fmt.Fprintln(w, headerStyle.Render(":: Ready to upload worklogs:"))
	for _, wl := range worklogs {
		fmt.Fprintf(w, "   %s\n", wl)
	}
	fmt.Fprintf(w, ":: Total time: %s\n", timecalc.FormatJira(totalDuration(worklogs)))
}

func totalDuration(worklogs []model.Worklog) time.Duration {
	ds := make([]time.Duration, len(worklogs))
	for i, wl := range worklogs {
		ds[i] = wl.Duration
	}
	return timecalc.Sum(ds...)
}
