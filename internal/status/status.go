// Package status provides a thread-safe status tracker for the egg-timer daemon.
// It is designed to be read by HTTP handlers while the control loop writes.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	GPIO        bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Remaining     time.Duration
	Duration      time.Duration
	Selected      time.Duration
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Readout returns the digit display text.
func (s Snapshot) Readout() string {
	return logic.FormatRemaining(s.Remaining)
}

// Egg returns the egg stage for the display.
func (s Snapshot) Egg() string {
	return logic.EggStage(s.State, s.Remaining, s.Selected)
}

// Controls returns which controls are enabled.
func (s Snapshot) Controls() logic.Controls {
	return logic.ControlsFor(s.State)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, preferred
// duration and config. The display starts stopped at the preferred duration.
func NewTracker(startTime time.Time, selected time.Duration, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateStopped,
			Remaining: selected,
			Duration:  selected,
			Selected:  selected,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the countdown state after an event.
// Called from the control loop on every countdown event.
func (t *Tracker) Update(state logic.State, remaining, duration time.Duration, counts logic.Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Remaining = remaining
	t.snap.Duration = duration
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetSelected records the preferred duration.
func (t *Tracker) SetSelected(d time.Duration) {
	t.mu.Lock()
	t.snap.Selected = d
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
