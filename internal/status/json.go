package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string       `json:"event,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	State            string       `json:"state"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	DurationSeconds  int64        `json:"duration_seconds"`
	SelectedSeconds  int64        `json:"selected_seconds"`
	Readout          string       `json:"readout"`
	Egg              string       `json:"egg"`
	Controls         ControlsJSON `json:"controls"`
	UptimeSeconds    int64        `json:"uptime_seconds"`
	StartTime        string       `json:"start_time"`
	Timestamp        string       `json:"timestamp"`
	MQTT             MQTTStatus   `json:"mqtt"`
	Counts           CountsJSON   `json:"counts"`
	Config           ConfigJSON   `json:"config"`
}

// ControlsJSON reports which controls are enabled.
type ControlsJSON struct {
	Start bool `json:"start"`
	Stop  bool `json:"stop"`
	Reset bool `json:"reset"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of countdown operation counts.
type CountsJSON struct {
	Starts   int `json:"starts"`
	Stops    int `json:"stops"`
	Resumes  int `json:"resumes"`
	Resets   int `json:"resets"`
	Finishes int `json:"finishes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	GPIO        bool   `json:"gpio"`
}

func seconds(d time.Duration) int64 {
	return int64(d.Round(time.Second) / time.Second)
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}
	ctl := snap.Controls()

	return StatusInner{
		State:            state,
		RemainingSeconds: seconds(snap.Remaining),
		DurationSeconds:  seconds(snap.Duration),
		SelectedSeconds:  seconds(snap.Selected),
		Readout:          snap.Readout(),
		Egg:              snap.Egg(),
		Controls:         ControlsJSON{Start: ctl.Start, Stop: ctl.Stop, Reset: ctl.Reset},
		UptimeSeconds:    int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		MQTT:             MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Starts:   snap.Counts.Starts,
			Stops:    snap.Counts.Stops,
			Resumes:  snap.Counts.Resumes,
			Resets:   snap.Counts.Resets,
			Finishes: snap.Counts.Finishes,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			GPIO:        snap.Config.GPIO,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
