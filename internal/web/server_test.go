package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/prefs"
	"github.com/sweeney/egg-timer/internal/status"
)

type fakeController struct {
	mu   sync.Mutex
	reqs []logic.Request
	err  error
}

func (f *fakeController) Submit(ctx context.Context, req logic.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.err
}

func (f *fakeController) requests() []logic.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.Request(nil), f.reqs...)
}

func newTestServer(t *testing.T, ctl Controller) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      20,
		DebounceMs:  50,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		GPIO:        true,
	}
	tr := status.NewTracker(start, 6*time.Minute, cfg)
	srv := New(":0", tr, ctl)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(logic.StateRunning, 185*time.Second, 6*time.Minute, logic.Counts{Starts: 2, Finishes: 1})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "RUNNING" {
		t.Errorf("State: got %q, want RUNNING", sj.Status.State)
	}
	if sj.Status.RemainingSeconds != 185 {
		t.Errorf("RemainingSeconds: got %d, want 185", sj.Status.RemainingSeconds)
	}
	if sj.Status.Readout != "3:05" {
		t.Errorf("Readout: got %q, want 3:05", sj.Status.Readout)
	}
	if sj.Status.Egg != "25" {
		t.Errorf("Egg: got %q, want 25", sj.Status.Egg)
	}
	if sj.Status.Controls.Start || !sj.Status.Controls.Stop || !sj.Status.Controls.Reset {
		t.Errorf("Controls: got %+v", sj.Status.Controls)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Starts != 2 || sj.Status.Counts.Finishes != 1 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Config.Broker: got %q", sj.Status.Config.Broker)
	}
}

func TestHTMLEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, &fakeController{})
	tr.Update(logic.StatePaused, 95*time.Second, 6*time.Minute, logic.Counts{Starts: 1, Stops: 1})

	for _, path := range []string{"/", "/index.html"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Errorf("%s status: got %d, want 200", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s Content-Type: got %q", path, ct)
		}

		html := string(body)
		for _, want := range []string{"1:35", "PAUSED", "Resume", `action="/prefs"`, "egg-50", "/index.json", "6 minutes (Soft)"} {
			if !strings.Contains(html, want) {
				t.Errorf("%s: missing %q", path, want)
			}
		}
		if strings.Contains(html, `http-equiv="refresh"`) {
			t.Errorf("%s: paused page should not auto-refresh", path)
		}
	}
}

func TestHTMLRefreshesWhileRunning(t *testing.T) {
	ts, tr := newTestServer(t, &fakeController{})
	tr.Update(logic.StateRunning, 300*time.Second, 6*time.Minute, logic.Counts{Starts: 1})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), `http-equiv="refresh"`) {
		t.Error("running page should auto-refresh")
	}
	if !strings.Contains(string(body), `name="force"`) {
		t.Error("running page should offer the force checkbox")
	}
}

func TestHTMLReadOnlyWithoutController(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if strings.Contains(string(body), `action="/start"`) {
		t.Error("read-only page should not render control forms")
	}
	if !strings.Contains(string(body), "6:00") {
		t.Error("expected initial readout 6:00")
	}
}

func TestUnknownPath404(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestCommandsRedirect(t *testing.T) {
	ctl := &fakeController{}
	ts, _ := newTestServer(t, ctl)
	client := noRedirect()

	paths := map[string]logic.CommandType{
		"/start": logic.CommandStart,
		"/stop":  logic.CommandStop,
		"/reset": logic.CommandReset,
	}
	for path, want := range paths {
		resp, err := client.Post(ts.URL+path, "application/x-www-form-urlencoded", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("POST %s: got %d, want 303", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/" {
			t.Errorf("POST %s: Location %q, want /", path, loc)
		}
		reqs := ctl.requests()
		if got := reqs[len(reqs)-1].Type; got != want {
			t.Errorf("POST %s: submitted %s, want %s", path, got, want)
		}
	}
}

func TestCommandRequiresPost(t *testing.T) {
	ctl := &fakeController{}
	ts, _ := newTestServer(t, ctl)

	for _, path := range []string{"/start", "/stop", "/reset", "/prefs"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: got %d, want 405", path, resp.StatusCode)
		}
		if allow := resp.Header.Get("Allow"); allow != "POST" {
			t.Errorf("GET %s: Allow %q, want POST", path, allow)
		}
	}
	if n := len(ctl.requests()); n != 0 {
		t.Errorf("expected no submissions, got %d", n)
	}
}

func TestCommandWithoutController(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/start", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("POST /start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", resp.StatusCode)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{logic.ErrControlDisabled, http.StatusConflict},
		{logic.ErrAlreadyRunning, http.StatusConflict},
		{logic.ErrNotPaused, http.StatusConflict},
		{logic.ErrTimerRunning, http.StatusConflict},
		{prefs.ErrOutOfRange, http.StatusBadRequest},
		{logic.ErrInvalidDuration, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		ts, _ := newTestServer(t, &fakeController{err: tt.err})
		resp, err := noRedirect().Post(ts.URL+"/stop", "application/x-www-form-urlencoded", nil)
		if err != nil {
			t.Fatalf("POST /stop: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != tt.want {
			t.Errorf("%v: got %d, want %d", tt.err, resp.StatusCode, tt.want)
		}
		if !strings.Contains(string(body), tt.err.Error()) {
			t.Errorf("%v: body %q should carry the error", tt.err, body)
		}
	}
}

func TestPrefsSubmit(t *testing.T) {
	ctl := &fakeController{}
	ts, _ := newTestServer(t, ctl)

	resp, err := noRedirect().PostForm(ts.URL+"/prefs", url.Values{"minutes": {"9"}, "force": {"true"}})
	if err != nil {
		t.Fatalf("POST /prefs: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", resp.StatusCode)
	}
	reqs := ctl.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	want := logic.Request{Type: logic.CommandSetDuration, Duration: 9 * time.Minute, Force: true}
	if reqs[0] != want {
		t.Errorf("request: got %+v, want %+v", reqs[0], want)
	}
}

func TestPrefsBadMinutes(t *testing.T) {
	ctl := &fakeController{}
	ts, _ := newTestServer(t, ctl)

	resp, err := http.PostForm(ts.URL+"/prefs", url.Values{"minutes": {"soft"}})
	if err != nil {
		t.Fatalf("POST /prefs: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
	if n := len(ctl.requests()); n != 0 {
		t.Errorf("expected no submissions, got %d", n)
	}
}
