// Package tui is the terminal front end: a bubbletea program that owns a
// countdown and renders the readout, the egg and the controls.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/prefs"
)

// tickMsg is a countdown tick. gen identifies the run that scheduled it.
type tickMsg struct {
	gen int
	t   time.Time
}

// teaTicks is the countdown's TickSource inside a bubbletea program.
// Ticks are tea.Tick commands; every Start or Stop bumps the generation
// so ticks already in flight are dropped when they arrive.
type teaTicks struct {
	gen       int
	active    bool
	scheduled bool
	interval  time.Duration
}

func (t *teaTicks) Start(interval time.Duration) {
	t.gen++
	t.active = true
	t.scheduled = false
	t.interval = interval
}

func (t *teaTicks) Stop() {
	t.gen++
	t.active = false
	t.scheduled = false
}

// current reports whether msg belongs to the active run.
func (t *teaTicks) current(msg tickMsg) bool {
	return t.active && msg.gen == t.gen
}

// next returns the command for the following tick, or nil when one is
// already pending or the countdown is not running.
func (t *teaTicks) next() tea.Cmd {
	if !t.active || t.scheduled {
		return nil
	}
	t.scheduled = true
	gen := t.gen
	return tea.Tick(t.interval, func(now time.Time) tea.Msg {
		return tickMsg{gen: gen, t: now}
	})
}

// Model is the bubbletea model for the egg timer.
type Model struct {
	countdown *logic.Countdown
	ticks     *teaTicks
	store     *prefs.Store
	prefs     prefs.Preferences
	now       func() time.Time
	bell      io.Writer

	last     logic.Event
	done     bool
	finished bool
	err      error

	keys     keyMap
	help     help.Model
	progress progress.Model
}

// New creates a model that starts stopped at the preferred duration.
// Preference changes are saved to store.
func New(store *prefs.Store, p prefs.Preferences) *Model {
	m := &Model{
		ticks:    &teaTicks{},
		store:    store,
		prefs:    p,
		now:      time.Now,
		bell:     os.Stderr,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithGradient("#F5E2A0", "#E8A317"), progress.WithWidth(ProgressWidth)),
	}
	m.countdown = logic.NewCountdown(m.ticks, m.observe)
	m.err = m.countdown.SetDefault(p.SelectedDuration())
	m.last = logic.Event{Type: logic.EventProgress, Remaining: p.SelectedDuration(), State: logic.StateStopped}
	m.keys.enable(logic.ControlsFor(logic.StateStopped))
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(store *prefs.Store, p prefs.Preferences) error {
	_, err := tea.NewProgram(New(store, p), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) observe(ev logic.Event) {
	m.last = ev
	switch ev.Type {
	case logic.EventFinished:
		m.done = true
		m.finished = true
	case logic.EventProgress:
		m.done = false
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.ticks.Stop()
			return m, tea.Quit
		}
		m.handleKey(msg)

	case tickMsg:
		if !m.ticks.current(msg) {
			// Stale tick from a run that was stopped or reset.
			return m, nil
		}
		m.ticks.scheduled = false
		m.countdown.Tick(msg.t)

	case tea.WindowSizeMsg:
		w := msg.Width - 2*DefaultPaddingX
		if w > ProgressWidth {
			w = ProgressWidth
		}
		if w > 0 {
			m.progress.Width = w
		}
		m.help.Width = msg.Width
	}

	m.keys.enable(logic.ControlsFor(m.countdown.State()))
	cmds = append(cmds, m.ticks.next())
	if m.finished {
		m.finished = false
		cmds = append(cmds, m.ring)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	now := m.now()
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Start):
		m.err = m.countdown.StartOrResume(m.prefs.SelectedDuration(), now)
	case key.Matches(msg, m.keys.Stop):
		m.countdown.Stop(now)
	case key.Matches(msg, m.keys.Reset):
		m.countdown.Reset(now)
	case key.Matches(msg, m.keys.More):
		m.err = m.adjust(1)
	case key.Matches(msg, m.keys.Less):
		m.err = m.adjust(-1)
	}
}

// adjust changes the preferred duration by delta minutes and saves it.
// A countdown in progress keeps its duration; the new value applies from
// the next start or reset.
func (m *Model) adjust(delta int) error {
	p := m.prefs
	if err := p.SetMinutes(p.SelectedMinutes() + delta); err != nil {
		return err
	}
	if m.store != nil {
		if err := m.store.Save(p); err != nil {
			return err
		}
	}
	m.prefs = p
	if err := m.countdown.SetDefault(p.SelectedDuration()); err != nil {
		return err
	}
	if m.countdown.IsStopped() && !m.done {
		m.last.Remaining = p.SelectedDuration()
	}
	return nil
}

func (m *Model) ring() tea.Msg {
	fmt.Fprint(m.bell, "\a")
	return nil
}

// remaining is the time shown on the readout.
func (m *Model) remaining() time.Duration {
	if m.done {
		return 0
	}
	return m.last.Remaining
}

// target is the duration the progress bar and egg measure against.
func (m *Model) target() time.Duration {
	if m.countdown.IsStopped() {
		return m.prefs.SelectedDuration()
	}
	return m.countdown.Duration()
}

func (m *Model) View() string {
	state := m.countdown.State()
	remaining := m.remaining()
	target := m.target()

	readout := readoutStyle
	if m.done {
		readout = doneStyle
	}

	pct := logic.PercentComplete(remaining, target) / 100
	if m.done {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Egg Timer"))
	b.WriteString("\n")
	b.WriteString(eggStyle.Render(eggFor(logic.EggStage(state, remaining, target))))
	b.WriteString("\n\n")
	b.WriteString(readout.Render(logic.FormatRemaining(remaining)))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n\n")

	mins := m.prefs.SelectedMinutes()
	b.WriteString(stateStyle.Render(fmt.Sprintf("%s · %s (%s)", strings.ToLower(string(state)), prefs.Describe(mins), prefs.PresetFor(mins))))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return appStyle.Render(b.String())
}
