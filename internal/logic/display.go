package logic

import (
	"fmt"
	"time"
)

// Egg stages, from raw to done. StageStopped is shown when no boil is in
// progress.
const (
	StageStopped = "stopped"
	Stage0       = "0"
	Stage25      = "25"
	Stage50      = "50"
	Stage75      = "75"
	Stage100     = "100"
)

// Controls says which controls are usable in a given state.
type Controls struct {
	Start bool
	Stop  bool
	Reset bool
}

// ControlsFor returns the enabled controls for state.
func ControlsFor(state State) Controls {
	switch state {
	case StateStopped:
		return Controls{Start: true}
	case StatePaused:
		return Controls{Start: true, Reset: true}
	default:
		return Controls{Stop: true}
	}
}

// Allows reports whether cmd is enabled by these controls.
// Duration changes are always accepted here; the control loop decides
// what to do with a running timer.
func (c Controls) Allows(cmd CommandType) bool {
	switch cmd {
	case CommandStart:
		return c.Start
	case CommandStop:
		return c.Stop
	case CommandReset:
		return c.Reset
	default:
		return true
	}
}

// FormatRemaining renders remaining time as "M:SS", or "Done!" at zero.
func FormatRemaining(d time.Duration) string {
	secs := int64(roundSeconds(d) / time.Second)
	if secs <= 0 {
		return "Done!"
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// PercentComplete returns how far through selected the countdown is.
func PercentComplete(remaining, selected time.Duration) float64 {
	if selected <= 0 {
		return 100
	}
	return 100 - float64(remaining)/float64(selected)*100
}

// EggStage picks the egg picture for the current state.
// A stopped timer shows the finished egg only when nothing remains.
func EggStage(state State, remaining, selected time.Duration) string {
	if state == StateStopped {
		if remaining == 0 {
			return Stage100
		}
		return StageStopped
	}

	p := PercentComplete(remaining, selected)
	switch {
	case p < 0:
		return Stage100
	case p < 25:
		return Stage0
	case p < 50:
		return Stage25
	case p < 75:
		return Stage50
	case p < 100:
		return Stage75
	default:
		return Stage100
	}
}
