// Package journal keeps a local SQLite audit trail of upload outcomes.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Tiliavir/tempoit/internal/model"
)

// Outcome values stored in the journal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one recorded upload attempt.
type Entry struct {
	ID          string
	RunID       string
	IntervalID  string
	Issue       string
	Date        string
	TimeSpent   string
	Duration    time.Duration
	Description string
	Outcome     string
	Detail      string
	RecordedAt  time.Time
}

// Journal appends upload outcomes to a SQLite database. Each Journal
// value stamps its entries with its own run id.
type Journal struct {
	db    *sql.DB
	runID string
}

// Open opens (or creates) the journal at path and runs migrations.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, runID: uuid.New().String()}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RunID identifies the entries written through this Journal.
func (j *Journal) RunID() string {
	return j.runID
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		interval_id TEXT NOT NULL,
		issue TEXT NOT NULL,
		work_date TEXT NOT NULL,
		time_spent TEXT NOT NULL,
		duration_sec INTEGER NOT NULL,
		description TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_run_id ON uploads(run_id);
	CREATE INDEX IF NOT EXISTS idx_uploads_recorded_at ON uploads(recorded_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// RecordSuccess appends a success entry for wl.
func (j *Journal) RecordSuccess(ctx context.Context, wl model.Worklog) error {
	_, err := j.insert(ctx, wl, OutcomeSuccess, "")
	return err
}

// RecordFail appends a failure entry for wl with the cause as detail.
func (j *Journal) RecordFail(ctx context.Context, wl model.Worklog, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	_, err := j.insert(ctx, wl, OutcomeFailure, detail)
	return err
}

func (j *Journal) insert(ctx context.Context, wl model.Worklog, outcome, detail string) (*Entry, error) {
	e := &Entry{
		ID:          uuid.New().String(),
		RunID:       j.runID,
		IntervalID:  wl.ID,
		Issue:       wl.Issue,
		Date:        wl.Date.String(),
		TimeSpent:   wl.TimeSpent(),
		Duration:    wl.Duration,
		Description: wl.Description,
		Outcome:     outcome,
		Detail:      detail,
		RecordedAt:  time.Now().UTC(),
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO uploads (id, run_id, interval_id, issue, work_date, time_spent, duration_sec, description, outcome, detail, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RunID, e.IntervalID, e.Issue, e.Date, e.TimeSpent, int64(e.Duration/time.Second),
		e.Description, e.Outcome, e.Detail, e.RecordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, run_id, interval_id, issue, work_date, time_spent, duration_sec, description, outcome, detail, recorded_at
		FROM uploads ORDER BY recorded_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var seconds int64
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.IntervalID, &e.Issue, &e.Date, &e.TimeSpent, &seconds,
			&e.Description, &e.Outcome, &detail, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Duration = time.Duration(seconds) * time.Second
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
