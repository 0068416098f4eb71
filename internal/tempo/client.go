// Package tempo uploads worklogs to the Tempo time-tracking plugin of a
// Jira server.
package tempo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	loginPath    = "/rest/gadget/1.0/login"
	worklogsPath = "/rest/tempo-rest/1.0/worklogs/"
	estimatePath = worklogsPath + "remainingEstimate/calculate/"
)

// Credentials identify the Jira user. When Token is set it is sent as a
// bearer token and the login form is skipped; Username is still required
// because worklogs are filed on behalf of that user.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// Client is an authenticated Tempo session. It is safe to reuse for many
// uploads but uploads must not run concurrently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
}

// Login opens a session against baseURL (without trailing slash, e.g.
// "https://tasks.opencraft.com"). With a password it posts the Jira login
// form and keeps the session cookie; with a token it builds a bearer
// client directly.
func Login(ctx context.Context, baseURL string, creds Credentials, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if creds.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrLoginFailed)
	}
	if creds.Token != "" {
		return NewTokenClient(ctx, baseURL, creds.Username, creds.Token, timeout), nil
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	c := &Client{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    baseURL,
		username:   creds.Username,
	}
	if err := c.login(ctx, creds.Password); err != nil {
		return nil, err
	}
	return c, nil
}

// NewTokenClient returns a Client that authenticates every request with a
// Jira personal access token.
func NewTokenClient(ctx context.Context, baseURL, username, token string, timeout time.Duration) *Client {
	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
	}
}

// Username returns the user worklogs are filed for.
func (c *Client) Username() string {
	return c.username
}

// loginResponse is the gadget login answer. Only loginSucceeded gates the
// session; the other flags are used to explain a refusal.
type loginResponse struct {
	LoginSucceeded     bool `json:"loginSucceeded"`
	LoginError         bool `json:"loginError"`
	CaptchaFailure     bool `json:"captchaFailure"`
	CommunicationError bool `json:"communicationError"`
}

func (c *Client) login(ctx context.Context, password string) error {
	form := url.Values{
		"os_username": {c.username},
		"os_password": {password},
	}
	body, err := c.postForm(ctx, "login", c.baseURL+loginPath, form)
	if err != nil {
		return err
	}

	var data loginResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}
	if !data.LoginSucceeded {
		switch {
		case data.CaptchaFailure:
			return fmt.Errorf("%w: captcha required, log in through the browser first", ErrLoginFailed)
		case data.CommunicationError:
			return fmt.Errorf("%w: server reported a communication error", ErrLoginFailed)
		default:
			return ErrLoginFailed
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(op, req)
}

func (c *Client) postForm(ctx context.Context, op, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(op, req)
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	slog.Debug("tempo request", "op", op, "method", req.Method, "url", req.URL.Redacted())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
