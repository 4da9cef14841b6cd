package logic

import "time"

// Countdown tracks remaining time against a target duration.
// Remaining time is always recomputed from the start reference and the
// supplied instant, never decremented per tick, so late or coalesced
// ticks do not drift.
//
// A Countdown is not safe for concurrent use. The owner calls every
// method from a single goroutine, and the TickSource delivers ticks back
// to that goroutine.
type Countdown struct {
	duration   time.Duration
	defaultDur time.Duration
	elapsed    time.Duration
	start      time.Time
	state      State
	ticks      TickSource
	notify     Observer
	counts     Counts
}

// NewCountdown creates a stopped countdown with DefaultDuration.
// A nil observer discards events.
func NewCountdown(ticks TickSource, notify Observer) *Countdown {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Countdown{
		duration:   DefaultDuration,
		defaultDur: DefaultDuration,
		state:      StateStopped,
		ticks:      ticks,
		notify:     notify,
	}
}

// Start begins a fresh countdown of d and emits an immediate progress event.
// It is allowed from STOPPED and PAUSED; a paused countdown is discarded.
func (c *Countdown) Start(d time.Duration, now time.Time) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	if c.state == StateRunning {
		return ErrAlreadyRunning
	}
	c.duration = d
	c.elapsed = 0
	c.start = now
	c.run()
	c.counts.Starts++
	c.Tick(now)
	return nil
}

// Resume continues a paused countdown from where it stopped.
func (c *Countdown) Resume(now time.Time) error {
	if c.state != StatePaused {
		return ErrNotPaused
	}
	c.start = now.Add(-c.elapsed)
	c.run()
	c.counts.Resumes++
	c.Tick(now)
	return nil
}

// StartOrResume is the start button: resume when paused, otherwise start d.
func (c *Countdown) StartOrResume(d time.Duration, now time.Time) error {
	if c.state == StatePaused {
		return c.Resume(now)
	}
	return c.Start(d, now)
}

// Stop pauses a running countdown, keeping the elapsed time.
// It always emits an event describing the resulting state; when the
// countdown is not running nothing else changes.
func (c *Countdown) Stop(now time.Time) {
	if c.state != StateRunning {
		c.emitProgress(now)
		return
	}
	c.elapsed = c.clampElapsed(now.Sub(c.start))
	c.halt()
	c.state = StatePaused
	c.counts.Stops++

	if c.remaining() <= 0 {
		c.finish(now)
		return
	}
	c.emitProgress(now)
}

// Reset cancels any tick and returns to STOPPED with the default duration.
func (c *Countdown) Reset(now time.Time) {
	c.clear()
	c.counts.Resets++
	c.emitProgress(now)
}

// Tick recomputes elapsed time from now. Ticks arriving while the
// countdown is not running are ignored.
func (c *Countdown) Tick(now time.Time) {
	if c.state != StateRunning {
		return
	}
	c.elapsed = c.clampElapsed(now.Sub(c.start))
	if c.remaining() <= 0 {
		c.finish(now)
		return
	}
	c.emitProgress(now)
}

// SetDefault changes the duration Reset returns to.
func (c *Countdown) SetDefault(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	c.defaultDur = d
	if c.state == StateStopped {
		c.duration = d
	}
	return nil
}

// Default returns the duration Reset returns to.
func (c *Countdown) Default() time.Duration { return c.defaultDur }

// State returns the current state.
func (c *Countdown) State() State { return c.state }

// IsStopped reports whether the countdown is idle with nothing elapsed.
func (c *Countdown) IsStopped() bool { return c.state == StateStopped }

// IsPaused reports whether the countdown was stopped part way through.
// Stopping a running countdown always pauses it, even with nothing
// elapsed yet, so Resume works after an immediate Stop.
func (c *Countdown) IsPaused() bool { return c.state == StatePaused }

// IsRunning reports whether ticks are active.
func (c *Countdown) IsRunning() bool { return c.state == StateRunning }

// Duration returns the target duration.
func (c *Countdown) Duration() time.Duration { return c.duration }

// Elapsed returns the elapsed time as of the last operation or tick.
func (c *Countdown) Elapsed() time.Duration { return c.elapsed }

// Counts returns a copy of the operation counters.
func (c *Countdown) Counts() Counts { return c.counts }

// Remaining returns the whole seconds left as of now. For a running
// countdown the value is computed from now; otherwise from the stored
// elapsed time.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	elapsed := c.elapsed
	if c.state == StateRunning {
		elapsed = c.clampElapsed(now.Sub(c.start))
	}
	r := roundSeconds(c.duration - elapsed)
	if r < 0 {
		return 0
	}
	return r
}

func (c *Countdown) run() {
	c.state = StateRunning
	if c.ticks != nil {
		c.ticks.Start(TickInterval)
	}
}

func (c *Countdown) halt() {
	if c.state == StateRunning && c.ticks != nil {
		c.ticks.Stop()
	}
}

func (c *Countdown) clear() {
	c.halt()
	c.start = time.Time{}
	c.duration = c.defaultDur
	c.elapsed = 0
	c.state = StateStopped
}

func (c *Countdown) finish(now time.Time) {
	c.clear()
	c.counts.Finishes++
	c.notify(Event{Timestamp: now, Type: EventFinished, State: c.state})
}

func (c *Countdown) emitProgress(now time.Time) {
	c.notify(Event{
		Timestamp: now,
		Type:      EventProgress,
		Remaining: c.remaining(),
		State:     c.state,
	})
}

func (c *Countdown) remaining() time.Duration {
	r := roundSeconds(c.duration - c.elapsed)
	if r < 0 {
		return 0
	}
	return r
}

// clampElapsed keeps elapsed within [0, duration]. A clock stepping
// backwards yields zero rather than negative elapsed time.
func (c *Countdown) clampElapsed(e time.Duration) time.Duration {
	if e < 0 {
		return 0
	}
	if e > c.duration {
		return c.duration
	}
	return e
}

// roundSeconds rounds half away from zero to whole seconds.
func roundSeconds(d time.Duration) time.Duration {
	return d.Round(time.Second)
}
