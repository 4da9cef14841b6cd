//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads push buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines [3]*gpiocdev.Line
}

var buttonNames = [3]string{"start", "stop", "reset"}

// NewRealReader creates a button reader for actual Raspberry Pi hardware.
func NewRealReader(pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip}
	offsets := [3]int{pins.Start, pins.Stop, pins.Reset}
	for i, offset := range offsets {
		// Buttons short the line to ground, so idle must read high.
		line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", buttonNames[i], offset, err)
		}
		r.lines[i] = line
	}

	return r, nil
}

// Read returns the logical button states.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (r *RealReader) Read() (Buttons, error) {
	var pressed [3]bool
	for i, line := range r.lines {
		raw, err := line.Value()
		if err != nil {
			return Buttons{}, fmt.Errorf("read %s pin: %w", buttonNames[i], err)
		}
		pressed[i] = raw == 0
	}

	return Buttons{Start: pressed[0], Stop: pressed[1], Reset: pressed[2]}, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults)
// before closing.
func (r *RealReader) Close() error {
	var errs []error

	for i, line := range r.lines {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", buttonNames[i], err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", buttonNames[i], err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealBuzzer drives an active buzzer on an output line.
type RealBuzzer struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu    sync.Mutex
	timer *time.Timer
}

// NewRealBuzzer requests pin as an output, initially silent.
func NewRealBuzzer(pin int) (*RealBuzzer, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}

	return &RealBuzzer{chip: chip, line: line}, nil
}

// Ring switches the buzzer on and schedules it off after d.
// A ring while already sounding extends it.
func (b *RealBuzzer) Ring(d time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.line.SetValue(1); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(d, b.silence)
	return nil
}

func (b *RealBuzzer) silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.line.SetValue(0)
}

// Close silences the buzzer and releases the line.
func (b *RealBuzzer) Close() error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	var errs []error
	if err := b.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("buzzer off: %w", err))
	}
	if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure buzzer pin: %w", err))
	}
	if err := b.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close buzzer pin: %w", err))
	}
	if err := b.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
