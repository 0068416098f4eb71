package tempo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tiliavir/tempoit/internal/model"
	"github.com/Tiliavir/tempoit/internal/tempo"
)

const (
	estimatePrefix = "/rest/tempo-rest/1.0/worklogs/remainingEstimate/calculate/"
	worklogsPrefix = "/rest/tempo-rest/1.0/worklogs/"
)

// fakeTempo is a minimal stand-in for the Jira/Tempo endpoints.
type fakeTempo struct {
	mu           sync.Mutex
	loginOK      bool
	estimateCode int
	submitBody   string
	estimates    []string
	submissions  []map[string]string
	authHeaders  []string
}

func newFakeTempo() *fakeTempo {
	return &fakeTempo{
		loginOK:      true,
		estimateCode: http.StatusOK,
		submitBody:   `<worklog valid="true" id="0"/>`,
	}
}

func (f *fakeTempo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/rest/gadget/1.0/login" && r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ok := f.loginOK && r.PostForm.Get("os_username") == "alice" && r.PostForm.Get("os_password") == "hunter2"
		if ok {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "s3cr3t", Path: "/"})
		}
		w.Header().Set("Content-Type", "application/json")
		if ok {
			_, _ = w.Write([]byte(`{"loginSucceeded":true,"loginError":false,"captchaFailure":false}`))
		} else {
			_, _ = w.Write([]byte(`{"loginSucceeded":false,"loginError":true,"captchaFailure":false}`))
		}

	case strings.HasPrefix(r.URL.Path, estimatePrefix) && r.Method == http.MethodGet:
		f.authHeaders = append(f.authHeaders, authOf(r))
		f.estimates = append(f.estimates, strings.TrimPrefix(r.URL.Path, estimatePrefix)+"?"+r.URL.RawQuery)
		if f.estimateCode != http.StatusOK {
			http.Error(w, "estimate unavailable", f.estimateCode)
			return
		}
		_, _ = w.Write([]byte("20m"))

	case strings.HasPrefix(r.URL.Path, worklogsPrefix) && r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.authHeaders = append(f.authHeaders, authOf(r))
		sub := map[string]string{"issue": strings.TrimPrefix(r.URL.Path, worklogsPrefix)}
		for k := range r.PostForm {
			sub[k] = r.PostForm.Get(k)
		}
		f.submissions = append(f.submissions, sub)
		_, _ = w.Write([]byte(f.submitBody))

	default:
		http.NotFound(w, r)
	}
}

// authOf describes how the request was authenticated.
func authOf(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if c, err := r.Cookie("JSESSIONID"); err == nil {
		return "cookie:" + c.Value
	}
	return ""
}

func sampleWorklog() model.Worklog {
	return model.Worklog{
		Duration:    90 * time.Minute,
		Date:        model.Date{Year: 2024, Month: time.January, Day: 1},
		Issue:       "SE-42",
		Description: "fix bug",
		ID:          "@1",
	}
}

func login(t *testing.T, srv *httptest.Server) *tempo.Client {
	t.Helper()
	c, err := tempo.Login(context.Background(), srv.URL+"/", tempo.Credentials{Username: "alice", Password: "hunter2"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return c
}

func TestLoginRejected(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := tempo.Login(context.Background(), srv.URL, tempo.Credentials{Username: "alice", Password: "wrong"}, time.Second)
	if !errors.Is(err, tempo.ErrLoginFailed) {
		t.Fatalf("Login err = %v, want ErrLoginFailed", err)
	}
}

func TestLoginHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := tempo.Login(context.Background(), srv.URL, tempo.Credentials{Username: "alice", Password: "hunter2"}, time.Second)
	var se *tempo.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Login err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want %d", se.Code, http.StatusServiceUnavailable)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	_, err := tempo.Login(context.Background(), "http://127.0.0.1:0", tempo.Credentials{Password: "x"}, time.Second)
	if !errors.Is(err, tempo.ErrLoginFailed) {
		t.Fatalf("Login err = %v, want ErrLoginFailed", err)
	}
}

func TestUpload(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := login(t, srv)
	if err := client.Upload(context.Background(), sampleWorklog()); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if len(fake.estimates) != 1 {
		t.Fatalf("estimate calls = %d, want 1", len(fake.estimates))
	}
	wantEstimate := "SE-42/2024-01-01/2024-01-01/1h 30m?username=alice"
	if fake.estimates[0] != wantEstimate {
		t.Errorf("estimate request = %q, want %q", fake.estimates[0], wantEstimate)
	}

	if len(fake.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(fake.submissions))
	}
	want := map[string]string{
		"issue":             "SE-42",
		"actionType":        "logTime",
		"ansidate":          "2024-01-01",
		"selectedUser":      "alice",
		"time":              "1h 30m",
		"remainingEstimate": "20m",
		"comment":           "fix bug",
	}
	for k, v := range want {
		if got := fake.submissions[0][k]; got != v {
			t.Errorf("submission[%s] = %q, want %q", k, got, v)
		}
	}

	for i, a := range fake.authHeaders {
		if a != "cookie:s3cr3t" {
			t.Errorf("request %d auth = %q, want session cookie", i, a)
		}
	}
}

func TestUploadRejected(t *testing.T) {
	fake := newFakeTempo()
	fake.submitBody = `<worklog valid="false"><error>Issue is closed</error></worklog>`
	srv := httptest.NewServer(fake)
	defer srv.Close()

	err := login(t, srv).Upload(context.Background(), sampleWorklog())
	var re *tempo.RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("Upload err = %v, want *RejectedError", err)
	}
	if re.Body != fake.submitBody {
		t.Errorf("Body = %q, want full response body", re.Body)
	}
}

func TestUploadEstimateFailureAborts(t *testing.T) {
	fake := newFakeTempo()
	fake.estimateCode = http.StatusInternalServerError
	srv := httptest.NewServer(fake)
	defer srv.Close()

	err := login(t, srv).Upload(context.Background(), sampleWorklog())
	var se *tempo.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Upload err = %v, want *StatusError", err)
	}
	if len(fake.submissions) != 0 {
		t.Errorf("submissions = %d, want 0 after estimate failure", len(fake.submissions))
	}
}

func TestUploadIsNotIdempotent(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := login(t, srv)
	wl := sampleWorklog()
	for i := 0; i < 2; i++ {
		if err := client.Upload(context.Background(), wl); err != nil {
			t.Fatalf("Upload #%d: %v", i+1, err)
		}
	}
	// Each call files a separate remote worklog.
	if len(fake.submissions) != 2 {
		t.Errorf("submissions = %d, want 2", len(fake.submissions))
	}
	if len(fake.estimates) != 2 {
		t.Errorf("estimate calls = %d, want 2", len(fake.estimates))
	}
}

func TestUploadTransportError(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	client := login(t, srv)
	srv.Close()

	err := client.Upload(context.Background(), sampleWorklog())
	if err == nil {
		t.Fatal("expected transport error after server shutdown")
	}
	var se *tempo.StatusError
	if errors.As(err, &se) {
		t.Errorf("err = %v, want transport error, not StatusError", err)
	}
}

func TestTokenClient(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := tempo.Login(context.Background(), srv.URL, tempo.Credentials{Username: "alice", Token: "pat-123"}, time.Second)
	if err != nil {
		t.Fatalf("Login with token: %v", err)
	}
	if client.Username() != "alice" {
		t.Errorf("Username = %q, want %q", client.Username(), "alice")
	}
	if err := client.Upload(context.Background(), sampleWorklog()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	for i, a := range fake.authHeaders {
		if a != "Bearer pat-123" {
			t.Errorf("request %d auth = %q, want bearer token", i, a)
		}
	}
}

func TestRemainingEstimate(t *testing.T) {
	fake := newFakeTempo()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	wl := sampleWorklog()
	wl.Duration = 10 * time.Second
	got, err := login(t, srv).RemainingEstimate(context.Background(), wl)
	if err != nil {
		t.Fatalf("RemainingEstimate: %v", err)
	}
	if got != "20m" {
		t.Errorf("RemainingEstimate = %q, want %q", got, "20m")
	}
	if !strings.Contains(fake.estimates[0], "/0h 1m?") {
		t.Errorf("estimate request = %q, want floored duration", fake.estimates[0])
	}
}
