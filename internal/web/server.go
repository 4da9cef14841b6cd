// Package web provides an HTTP status page and controls for the egg-timer daemon.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/prefs"
	"github.com/sweeney/egg-timer/internal/status"
)

// Controller accepts control requests on behalf of the countdown owner.
type Controller interface {
	Submit(ctx context.Context, req logic.Request) error
}

// submitTimeout bounds how long a handler waits for the control loop.
const submitTimeout = 2 * time.Second

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	ctl        Controller
}

// New creates a Server that reads state from the given tracker and sends
// control requests to ctl. A nil ctl serves a read-only page.
func New(addr string, tracker *status.Tracker, ctl Controller) *Server {
	s := &Server{tracker: tracker, ctl: ctl}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/start", s.handleCommand(logic.CommandStart))
	mux.HandleFunc("/stop", s.handleCommand(logic.CommandStop))
	mux.HandleFunc("/reset", s.handleCommand(logic.CommandReset))
	mux.HandleFunc("/prefs", s.handlePrefs)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.ctl != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleCommand(cmd logic.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.submit(w, r, logic.Request{Type: cmd})
	}
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	minutes, err := strconv.Atoi(r.FormValue("minutes"))
	if err != nil {
		http.Error(w, "minutes: "+err.Error(), http.StatusBadRequest)
		return
	}
	force, _ := strconv.ParseBool(r.FormValue("force"))
	s.submit(w, r, logic.Request{
		Type:     logic.CommandSetDuration,
		Duration: time.Duration(minutes) * time.Minute,
		Force:    force,
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, req logic.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ctl == nil {
		http.Error(w, "controls disabled", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	if err := s.ctl.Submit(ctx, req); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, prefs.ErrOutOfRange), errors.Is(err, logic.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrControlDisabled), errors.Is(err, logic.ErrTimerRunning),
		errors.Is(err, logic.ErrAlreadyRunning), errors.Is(err, logic.ErrNotPaused):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
