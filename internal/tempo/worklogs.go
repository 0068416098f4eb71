package tempo

import (
	"context"
	"net/url"
	"strings"

	"github.com/Tiliavir/tempoit/internal/model"
)

// successMarker is how Tempo flags an accepted worklog inside its
// response body; the HTTP status is 200 either way.
const successMarker = `valid="true"`

// RemainingEstimate asks Tempo what the issue's remaining estimate will be
// once wl is logged. For example, an issue with 1h left and a 40m worklog
// yields "20m". The value must be echoed back on submission or Tempo leaves
// the estimate untouched. The body is returned verbatim.
func (c *Client) RemainingEstimate(ctx context.Context, wl model.Worklog) (string, error) {
	date := wl.Date.String()
	endpoint := c.baseURL + estimatePath + strings.Join([]string{
		url.PathEscape(wl.Issue),
		date,
		date,
		url.PathEscape(wl.TimeSpent()),
	}, "/") + "?" + url.Values{"username": {c.username}}.Encode()

	body, err := c.get(ctx, "remaining estimate", endpoint)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Upload files wl in Tempo. It first queries the remaining estimate, then
// submits the worklog form.
//
// Upload is not idempotent: calling it twice creates two worklogs, and
// Tempo exposes no identifier to find or remove them afterwards.
func (c *Client) Upload(ctx context.Context, wl model.Worklog) error {
	estimate, err := c.RemainingEstimate(ctx, wl)
	if err != nil {
		return err
	}

	form := url.Values{
		"actionType":        {"logTime"},
		"ansidate":          {wl.Date.String()},
		"selectedUser":      {c.username},
		"time":              {wl.TimeSpent()},
		"remainingEstimate": {estimate},
		"comment":           {wl.Description},
	}
	body, err := c.postForm(ctx, "submit worklog", c.baseURL+worklogsPath+url.PathEscape(wl.Issue), form)
	if err != nil {
		return err
	}
	return checkSubmission(wl.Issue, string(body))
}

// checkSubmission decodes the submission response: the body is treated as
// plain text and accepted only if it contains the success marker.
func checkSubmission(issue, body string) error {
	if !strings.Contains(body, successMarker) {
		return &RejectedError{Issue: issue, Body: body}
	}
	return nil
}
