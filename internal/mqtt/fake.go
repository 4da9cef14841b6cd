package mqtt

import (
	"sync"

	"github.com/sweeney/egg-timer/internal/logic"
)

// FakePublisher records what the timer publishes so tests can inspect it.
// It is safe to share between the control loop and a test goroutine.
type FakePublisher struct {
	mu sync.Mutex

	Events         []TimerEvent  // countdown events, in publish order
	Payloads       [][]byte      // JSON for each entry in Events
	SystemEvents   []SystemEvent // STARTUP, HEARTBEAT, SHUTDOWN...
	SystemPayloads [][]byte      // JSON for each entry in SystemEvents

	// Failures to inject. A failed publish records nothing.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event TimerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Finished returns the FINISHED events, one per completed boil.
func (f *FakePublisher) Finished() []TimerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TimerEvent
	for _, ev := range f.Events {
		if ev.Type == logic.EventFinished {
			out = append(out, ev)
		}
	}
	return out
}

// Sessions returns the distinct boil session IDs seen, in first-seen order.
func (f *FakePublisher) Sessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, ev := range f.Events {
		if ev.SessionID != "" && !seen[ev.SessionID] {
			seen[ev.SessionID] = true
			out = append(out, ev.SessionID)
		}
	}
	return out
}

// Reset forgets what was published. Injected failures and the connection
// flag are left as configured.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
}
