package logic

import "time"

// Detector debounces the push buttons and reports presses.
type Detector struct {
	debounceDuration time.Duration
	buttons          [3]ChannelState
	baselined        bool
}

// NewDetector creates a new press detector with the given debounce duration.
func NewDetector(debounceDuration time.Duration) *Detector {
	return &Detector{debounceDuration: debounceDuration}
}

// Process takes a new input sample and returns any presses that should be acted on.
// Presses are only returned after baseline is established and on a
// released-to-pressed transition. Releases are tracked but not reported.
func (d *Detector) Process(input Input) []Press {
	levels := [3]bool{input.Start, input.Stop, input.Reset}

	var pressed [3]bool
	for i := range d.buttons {
		pressed[i] = d.processChannel(&d.buttons[i], levels[i], input.Time)
	}

	// Check if we've established baseline
	if !d.baselined {
		for i := range d.buttons {
			if !d.buttons[i].Baselined {
				return nil
			}
		}
		d.baselined = true
		return nil // A button held during boot is never a press
	}

	var presses []Press
	// Order: start, stop, reset if several settle on the same sample
	for i, p := range pressed {
		if p {
			presses = append(presses, Press{Timestamp: input.Time, Button: Button(i)})
		}
	}
	return presses
}

// processChannel handles debounce logic for a single button.
// Returns true if the button settled into the pressed level.
func (d *Detector) processChannel(ch *ChannelState, level bool, now time.Time) bool {
	// First time seeing this button
	if !ch.Baselined {
		if !ch.HasPending || ch.Pending != level {
			// Start observing, or restart after a change during baseline
			ch.Pending = level
			ch.HasPending = true
			ch.PendingSince = now
			return false
		}

		if now.Sub(ch.PendingSince) >= d.debounceDuration {
			ch.Stable = level
			ch.Baselined = true
			ch.HasPending = false
		}
		return false
	}

	if level == ch.Stable {
		// Bounce back to stable, clear any pending
		ch.HasPending = false
		return false
	}

	if !ch.HasPending {
		ch.Pending = level
		ch.HasPending = true
		ch.PendingSince = now
		return false
	}

	if now.Sub(ch.PendingSince) >= d.debounceDuration {
		ch.Stable = level
		ch.HasPending = false
		return level
	}
	return false
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// Held returns the current stable level of each button.
func (d *Detector) Held() (start, stop, reset bool) {
	return d.buttons[ButtonStart].Stable, d.buttons[ButtonStop].Stable, d.buttons[ButtonReset].Stable
}
