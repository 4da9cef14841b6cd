package logic

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "Done!"},
		{-3 * time.Second, "Done!"},
		{1 * time.Second, "0:01"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{DefaultDuration, "6:00"},
		{125 * time.Second, "2:05"},
		{30 * time.Minute, "30:00"},
		{1500 * time.Millisecond, "0:02"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEggStageStopped(t *testing.T) {
	if got := EggStage(StateStopped, DefaultDuration, DefaultDuration); got != StageStopped {
		t.Errorf("stopped with time left: got %q, want %q", got, StageStopped)
	}
	if got := EggStage(StateStopped, 0, DefaultDuration); got != Stage100 {
		t.Errorf("stopped at zero: got %q, want %q", got, Stage100)
	}
}

func TestEggStageBuckets(t *testing.T) {
	selected := 100 * time.Second
	tests := []struct {
		remaining time.Duration
		want      string
	}{
		{100 * time.Second, Stage0},
		{76 * time.Second, Stage0},
		{75 * time.Second, Stage25},
		{51 * time.Second, Stage25},
		{50 * time.Second, Stage50},
		{26 * time.Second, Stage50},
		{25 * time.Second, Stage75},
		{1 * time.Second, Stage75},
		{0, Stage100},
		{150 * time.Second, Stage100}, // selected shrank under a running timer
	}
	for _, tt := range tests {
		for _, st := range []State{StateRunning, StatePaused} {
			if got := EggStage(st, tt.remaining, selected); got != tt.want {
				t.Errorf("EggStage(%s, %v): got %q, want %q", st, tt.remaining, got, tt.want)
			}
		}
	}
}

func TestPercentCompleteZeroSelected(t *testing.T) {
	if got := PercentComplete(10*time.Second, 0); got != 100 {
		t.Errorf("got %v, want 100", got)
	}
}

func TestControlsFor(t *testing.T) {
	tests := []struct {
		state State
		want  Controls
	}{
		{StateStopped, Controls{Start: true}},
		{StatePaused, Controls{Start: true, Reset: true}},
		{StateRunning, Controls{Stop: true}},
	}
	for _, tt := range tests {
		if got := ControlsFor(tt.state); got != tt.want {
			t.Errorf("ControlsFor(%s): got %+v, want %+v", tt.state, got, tt.want)
		}
	}
}

func TestControlsAllows(t *testing.T) {
	running := ControlsFor(StateRunning)
	if running.Allows(CommandStart) {
		t.Error("running should not allow start")
	}
	if !running.Allows(CommandStop) {
		t.Error("running should allow stop")
	}
	if running.Allows(CommandReset) {
		t.Error("running should not allow reset")
	}
	if !running.Allows(CommandSetDuration) {
		t.Error("duration changes are always allowed through")
	}
}

func TestButtonCommand(t *testing.T) {
	want := map[Button]CommandType{
		ButtonStart: CommandStart,
		ButtonStop:  CommandStop,
		ButtonReset: CommandReset,
	}
	for b, cmd := range want {
		if got := b.Command(); got != cmd {
			t.Errorf("%s.Command(): got %s, want %s", b, got, cmd)
		}
	}
	if Button(9).String() != "unknown" {
		t.Errorf("unknown button: got %q", Button(9).String())
	}
}
