// Package logic contains the pure egg timer logic: the countdown state
// machine, the display rules and push-button debouncing.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"time"
)

// DefaultDuration is the boil time used when nothing else is configured.
const DefaultDuration = 360 * time.Second

// TickInterval is how often a running countdown expects Tick to be called.
const TickInterval = time.Second

// State is the explicit state of a countdown.
type State string

const (
	StateStopped State = "STOPPED"
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
)

// EventType tags an Event delivered to the observer.
type EventType string

const (
	EventProgress EventType = "PROGRESS"
	EventFinished EventType = "FINISHED"
)

// Event is a notification from the countdown.
// Remaining is always whole seconds and zero for EventFinished.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Remaining time.Duration
	State     State
}

// Observer receives countdown events synchronously on the caller's goroutine.
type Observer func(Event)

// TickSource is the periodic tick handle owned by a countdown.
// Start begins repeating ticks, Stop cancels them. Both are called only
// by the countdown, and only on state transitions.
type TickSource interface {
	Start(interval time.Duration)
	Stop()
}

// Counts tracks countdown operations since the session started.
type Counts struct {
	Starts   int
	Stops    int
	Resumes  int
	Resets   int
	Finishes int
}

var (
	ErrAlreadyRunning  = errors.New("timer already running")
	ErrNotPaused       = errors.New("timer not paused")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// CommandType names a control request from a button, web page or key.
type CommandType string

const (
	CommandStart       CommandType = "START"
	CommandStop        CommandType = "STOP"
	CommandReset       CommandType = "RESET"
	CommandSetDuration CommandType = "SET_DURATION"
)

// Button identifies a physical push button.
type Button int

const (
	ButtonStart Button = iota
	ButtonStop
	ButtonReset
)

func (b Button) String() string {
	switch b {
	case ButtonStart:
		return "start"
	case ButtonStop:
		return "stop"
	case ButtonReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Command maps a button to the control request it triggers.
func (b Button) Command() CommandType {
	switch b {
	case ButtonStop:
		return CommandStop
	case ButtonReset:
		return CommandReset
	default:
		return CommandStart
	}
}

// Input represents a single sample of logical button states.
type Input struct {
	Start bool // true = pressed (already inverted from raw GPIO)
	Stop  bool
	Reset bool
	Time  time.Time
}

// Press is a debounced button press.
type Press struct {
	Timestamp time.Time
	Button    Button
}

// ChannelState tracks debounce state for a single button.
type ChannelState struct {
	// Current stable (debounced) level
	Stable bool
	// Pending level during debounce
	Pending bool
	// Whether a pending level is being observed
	HasPending bool
	// Time when pending level was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

var (
	// ErrControlDisabled means the control is greyed out in the current state.
	ErrControlDisabled = errors.New("control not available in current state")
	// ErrTimerRunning means a duration change needs Force while a boil is in progress.
	ErrTimerRunning = errors.New("timer running: reset required to apply new duration")
)

// Request is a control request submitted to the control loop.
type Request struct {
	Type     CommandType
	Duration time.Duration // CommandSetDuration only
	Force    bool          // CommandSetDuration only: reset a running timer
}
