package gpio

import (
	"errors"
	"time"
)

// FakeReader is a test double that returns scripted button samples.
type FakeReader struct {
	// Samples contains scripted button states to return.
	// Each call to Read() consumes the next sample.
	Samples []Buttons

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Buttons) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Buttons, error) {
	if f.ReadError != nil {
		return Buttons{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Buttons{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeBuzzer records rings for test assertions.
type FakeBuzzer struct {
	// Rings contains the duration of every successful Ring call.
	Rings []time.Duration

	// RingError, if set, will be returned by Ring.
	RingError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeBuzzer creates a FakeBuzzer.
func NewFakeBuzzer() *FakeBuzzer {
	return &FakeBuzzer{}
}

// Ring records d.
func (f *FakeBuzzer) Ring(d time.Duration) error {
	if f.RingError != nil {
		return f.RingError
	}
	f.Rings = append(f.Rings, d)
	return nil
}

// Close marks the buzzer as closed.
func (f *FakeBuzzer) Close() error {
	f.Closed = true
	return nil
}
