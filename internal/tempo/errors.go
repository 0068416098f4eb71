package tempo

import (
	"errors"
	"fmt"
)

// ErrLoginFailed is returned when Jira answers the login form but reports
// that the credentials were not accepted.
var ErrLoginFailed = errors.New("login failed")

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Code, e.Body)
}

// RejectedError is a submission answered with 2xx whose body lacks the
// success marker. Body holds the full response for diagnostics.
type RejectedError struct {
	Issue string
	Body  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("worklog for %s rejected: %s", e.Issue, e.Body)
}
