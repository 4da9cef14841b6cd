// Package gpio provides push-button reading and a buzzer with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Buttons is one sample of the three push buttons (true = pressed).
type Buttons struct {
	Start bool
	Stop  bool
	Reset bool
}

// Reader reads push-button states.
type Reader interface {
	// Read returns the logical button states.
	// The buttons pull their lines to ground: raw low = pressed.
	Read() (Buttons, error)

	// Close releases GPIO resources.
	Close() error
}

// Buzzer sounds the finished alarm.
type Buzzer interface {
	// Ring sounds the buzzer for d without blocking.
	Ring(d time.Duration) error

	// Close silences the buzzer and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinStart  = 17
	DefaultPinStop   = 27
	DefaultPinReset  = 22
	DefaultPinBuzzer = 18
)

// Pins holds the BCM pin numbers in use.
type Pins struct {
	Start  int
	Stop   int
	Reset  int
	Buzzer int
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Start:  DefaultPinStart,
		Stop:   DefaultPinStop,
		Reset:  DefaultPinReset,
		Buzzer: DefaultPinBuzzer,
	}
}
