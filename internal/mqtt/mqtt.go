// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
)

// Topic is the MQTT topic for countdown events.
const Topic = "kitchen/egg-timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "kitchen/egg-timer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a countdown event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event TimerEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// TimerEvent is a countdown event with the context needed to render it.
type TimerEvent struct {
	logic.Event
	SessionID string        // boil session, empty when no boil is in progress
	Selected  time.Duration // preferred duration, for the egg stage
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload contains the countdown event details.
type TimerPayload struct {
	Timestamp        string `json:"timestamp"`
	Event            string `json:"event"`
	State            string `json:"state"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Readout          string `json:"readout"`
	Egg              string `json:"egg"`
	Session          string `json:"session,omitempty"`
}

// FormatPayload creates the JSON payload for a countdown event.
func FormatPayload(event TimerEvent) ([]byte, error) {
	payload := Payload{
		Timer: TimerPayload{
			Timestamp:        event.Timestamp.UTC().Format(time.RFC3339),
			Event:            string(event.Type),
			State:            string(event.State),
			RemainingSeconds: int64(event.Remaining / time.Second),
			Readout:          logic.FormatRemaining(event.Remaining),
			Egg:              logic.EggStage(event.State, event.Remaining, event.Selected),
			Session:          event.SessionID,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
