// Package timew reads intervals from timewarrior and tags them with
// upload outcomes.
package timew

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Tiliavir/tempoit/internal/model"
)

// Tags are the timewarrior tags used to mark upload state.
type Tags struct {
	// Logged marks an interval that has been uploaded.
	Logged string
	// Pending marks an interval that should be uploaded; removed on success.
	Pending string
	// Failed marks an interval whose last upload failed; removed on success.
	Failed string
}

// DefaultTags match the conventional "log" workflow.
var DefaultTags = Tags{Logged: "logged", Pending: "log", Failed: "logfail"}

// Client talks to timewarrior through a Runner.
type Client struct {
	runner Runner
	filter []string
	tags   Tags
}

// NewClient returns a Client exporting intervals that match filter.
func NewClient(runner Runner, filter []string, tags Tags) *Client {
	return &Client{runner: runner, filter: filter, tags: tags}
}

// Intervals runs `timew export <filter>` and decodes the result.
func (c *Client) Intervals(ctx context.Context) ([]model.Interval, error) {
	args := append([]string{"export"}, c.filter...)
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("timewarrior export failed: %w", err)
	}
	return decode(out)
}

// ParseExport decodes a `timew export` document from r.
func ParseExport(r io.Reader) ([]model.Interval, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return decode(data)
}

func decode(data []byte) ([]model.Interval, error) {
	var intervals []model.Interval
	if err := json.Unmarshal(data, &intervals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timewarrior export: %w", err)
	}
	return intervals, nil
}

// RecordSuccess tags the interval as logged and drops the pending and
// failure markers so it is excluded from later exports.
func (c *Client) RecordSuccess(ctx context.Context, wl model.Worklog) error {
	if _, err := c.runner.Run(ctx, "tag", wl.ID, c.tags.Logged); err != nil {
		return fmt.Errorf("tagging %s as %s: %w", wl.ID, c.tags.Logged, err)
	}
	if _, err := c.runner.Run(ctx, "untag", wl.ID, c.tags.Pending, c.tags.Failed); err != nil {
		return fmt.Errorf("untagging %s: %w", wl.ID, err)
	}
	return nil
}

// RecordFail tags the interval as failed. It stays in the pending set.
func (c *Client) RecordFail(ctx context.Context, wl model.Worklog, _ error) error {
	if _, err := c.runner.Run(ctx, "tag", wl.ID, c.tags.Failed); err != nil {
		return fmt.Errorf("tagging %s as %s: %w", wl.ID, c.tags.Failed, err)
	}
	return nil
}
